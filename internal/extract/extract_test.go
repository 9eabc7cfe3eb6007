package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/llm"
	"github.com/abhisek/studyquiz/internal/topics"
)

const notes = "The mitochondria is the powerhouse of the cell and produces ATP through respiration."

func TestKindFromMIME(t *testing.T) {
	tests := []struct {
		mime    string
		want    Kind
		wantErr bool
	}{
		{"application/pdf", KindPDF, false},
		{"image/png", KindImage, false},
		{"IMAGE/JPEG", KindImage, false},
		{"text/plain; charset=utf-8", KindText, false},
		{"text/markdown", KindText, false},
		{"application/zip", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			got, err := KindFromMIME(tt.mime)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect(t *testing.T) {
	pdfIn, err := Detect(buildPDF("hello"))
	require.NoError(t, err)
	assert.Equal(t, KindPDF, pdfIn.Kind)
	assert.Equal(t, "application/pdf", pdfIn.MIMEType)

	pngHeader := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	imgIn, err := Detect(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, KindImage, imgIn.Kind)
	assert.Equal(t, "image/png", imgIn.MIMEType)

	txtIn, err := Detect([]byte(notes))
	require.NoError(t, err)
	assert.Equal(t, KindText, txtIn.Kind)

	_, err = Detect([]byte("PK\x03\x04\x14\x00\x00\x00"))
	assert.Error(t, err)
}

func TestDecodePayload(t *testing.T) {
	raw := []byte("image-bytes")
	enc := base64.StdEncoding.EncodeToString(raw)

	got, err := DecodePayload(enc)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = DecodePayload("data:image/png;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = DecodePayload("%%%not base64")
	assert.Error(t, err)
}

func TestExtract_Text(t *testing.T) {
	e := New(nil, DefaultConfig())

	c, err := e.Extract(context.Background(), Input{Kind: KindText, Payload: []byte("  \n" + notes + "\n\n ")})
	require.NoError(t, err)
	assert.Equal(t, corpus.Corpus(notes), c)
}

func TestExtract_TextTooShort(t *testing.T) {
	e := New(nil, DefaultConfig())

	_, err := e.Extract(context.Background(), Input{Kind: KindText, Payload: []byte(strings.Repeat("a", 49))})
	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	var short *corpus.ErrInputTooShort
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 49, short.Got)

	_, err = e.Extract(context.Background(), Input{Kind: KindText, Payload: []byte(strings.Repeat("a", 50))})
	assert.NoError(t, err)
}

func TestExtract_PDF(t *testing.T) {
	e := New(nil, DefaultConfig())
	data := buildPDF("Chapter 1 Cells. Every living thing is made of cells.", "Chapter 2 Energy. Cells use ATP for energy.")

	c, err := e.Extract(context.Background(), Input{Kind: KindPDF, Payload: data})
	require.NoError(t, err)
	assert.Contains(t, c.String(), "Chapter 1 Cells")
	assert.Contains(t, c.String(), "\n\nChapter 2 Energy")
}

func TestExtract_ScannedPDF(t *testing.T) {
	e := New(nil, DefaultConfig())

	_, err := e.Extract(context.Background(), Input{Kind: KindPDF, Payload: buildPDF("", "")})
	require.Error(t, err)
	assert.Equal(t, MsgLowText, err.Error())
}

func TestExtract_TooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxInputBytes = 16
	mock := llm.NewMockProvider()
	e := New(mock, cfg)

	_, err := e.Extract(context.Background(), Input{Kind: KindImage, MIMEType: "image/png", Payload: make([]byte, 17)})
	var tl *ErrTooLarge
	require.ErrorAs(t, err, &tl)
	assert.Equal(t, 0, mock.CallCount())
}

func TestExtract_ImageOCR(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(notes)})
	e := New(mock, DefaultConfig())

	c, err := e.Extract(context.Background(), Input{Kind: KindImage, MIMEType: "image/jpeg", Payload: []byte("jpeg")})
	require.NoError(t, err)
	assert.Equal(t, corpus.Corpus(notes), c)

	req := mock.Calls[0]
	require.Len(t, req.Attachments, 1)
	assert.Equal(t, "image/jpeg", req.Attachments[0].MIMEType)
	assert.Equal(t, 0.1, req.Temperature)
	assert.Nil(t, req.Schema)
	assert.Contains(t, req.Messages[0].Content, "Do NOT summarize")
}

func TestExtract_ImageLowText(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("blurry")})
	e := New(mock, DefaultConfig())

	_, err := e.Extract(context.Background(), Input{Kind: KindImage, MIMEType: "image/png", Payload: []byte("png")})
	require.Error(t, err)
	assert.Equal(t, MsgLowText, err.Error())
}

func TestExtract_ImageRemoteErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"rate limit", &llm.ErrRateLimit{}, llm.MsgRateLimited},
		{"quota", &llm.ErrQuotaExhausted{}, llm.MsgQuotaExhausted},
		{"timeout", &llm.ErrTimeout{After: ImageTimeout}, llm.MsgTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(llm.NewMockProvider(llm.MockResponse{Err: tt.err}), DefaultConfig())
			_, err := e.Extract(context.Background(), Input{Kind: KindImage, MIMEType: "image/png", Payload: []byte("png")})
			var ee *ExtractionError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.msg, llm.UserMessage(err))
		})
	}
}

// slowProvider blocks until its context ends and reports a plain failure.
type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, errors.New("connection closed")
}

func (slowProvider) ModelID() string { return "slow" }

func TestExtract_ImageTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ImageTimeout = 10 * time.Millisecond
	e := New(slowProvider{}, cfg)

	_, err := e.Extract(context.Background(), Input{Kind: KindImage, MIMEType: "image/png", Payload: []byte("png")})
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, llm.MsgTimeout, llm.UserMessage(err))
}

func TestExtract_ImageWithoutProvider(t *testing.T) {
	e := New(nil, DefaultConfig())
	_, err := e.Extract(context.Background(), Input{Kind: KindImage, MIMEType: "image/png", Payload: []byte("png")})
	var ee *ExtractionError
	assert.ErrorAs(t, err, &ee)
}

type stubSegmenter struct {
	calls  int
	topics []topics.Topic
}

func (s *stubSegmenter) SegmentOrEmpty(context.Context, corpus.Corpus) []topics.Topic {
	s.calls++
	return s.topics
}

func TestExtractWithTopics(t *testing.T) {
	long := strings.Repeat("Cells are the basic unit of life. ", 20)
	found := []topics.Topic{{ID: "topic-1", Title: "Cells"}}

	tests := []struct {
		name      string
		text      string
		seg       *stubSegmenter
		wantCalls int
		wantNil   bool
	}{
		{"long corpus segments", long, &stubSegmenter{topics: found}, 1, false},
		{"short corpus skips", notes, &stubSegmenter{topics: found}, 0, true},
		{"empty topics are nil", long, &stubSegmenter{topics: []topics.Topic{}}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(nil, DefaultConfig())
			res, err := e.ExtractWithTopics(context.Background(), Input{Kind: KindText, Payload: []byte(tt.text)}, tt.seg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCalls, tt.seg.calls)
			if tt.wantNil {
				assert.Nil(t, res.Topics)
			} else {
				assert.Equal(t, found, res.Topics)
			}
		})
	}
}

func TestExtractWithTopics_UploadThreshold(t *testing.T) {
	assert.Equal(t, corpus.MinUploadTopicsLength, UploadConfig().TopicsThreshold)
	found := []topics.Topic{{ID: "topic-1", Title: "Cells"}}
	e := New(nil, UploadConfig())

	medium := strings.Repeat("Cells are the basic unit of life. ", 20)
	seg := &stubSegmenter{topics: found}
	res, err := e.ExtractWithTopics(context.Background(), Input{Kind: KindText, Payload: []byte(medium)}, seg)
	require.NoError(t, err)
	assert.Zero(t, seg.calls, "%d characters is below the upload threshold", len(medium))
	assert.Nil(t, res.Topics)

	long := strings.Repeat("Cells are the basic unit of life. ", 40)
	res, err = e.ExtractWithTopics(context.Background(), Input{Kind: KindText, Payload: []byte(long)}, seg)
	require.NoError(t, err)
	assert.Equal(t, 1, seg.calls)
	assert.Equal(t, found, res.Topics)
}

func TestExtractWithTopics_ExtractionFails(t *testing.T) {
	e := New(nil, DefaultConfig())
	seg := &stubSegmenter{}
	_, err := e.ExtractWithTopics(context.Background(), Input{Kind: KindText, Payload: []byte("short")}, seg)
	assert.Error(t, err)
	assert.Equal(t, 0, seg.calls)
}
