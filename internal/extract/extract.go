// Package extract turns uploaded study material into a plain-text corpus.
package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/llm"
	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/topics"
)

// Kind is the source format of an Input.
type Kind string

const (
	KindText  Kind = "text"
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// Input is one ingestion event.
type Input struct {
	Kind Kind

	// Payload is the raw file bytes, or UTF-8 text for KindText.
	Payload []byte

	// MIMEType is required for images so the provider can label the blob.
	MIMEType string
}

// Result is a corpus plus the topics found in it, if any.
type Result struct {
	Corpus corpus.Corpus
	Topics []topics.Topic
}

// KindFromMIME maps a MIME type to an input Kind.
func KindFromMIME(mime string) (Kind, error) {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mime)), ";")
	base = strings.TrimSpace(base)
	switch {
	case base == "application/pdf":
		return KindPDF, nil
	case strings.HasPrefix(base, "image/"):
		return KindImage, nil
	case strings.HasPrefix(base, "text/"):
		return KindText, nil
	}
	return "", fmt.Errorf("unsupported file type %q", mime)
}

// Detect sniffs data and builds an Input with the matching Kind.
func Detect(data []byte) (Input, error) {
	mt := mimetype.Detect(data)
	kind, err := KindFromMIME(mt.String())
	if err != nil {
		return Input{}, err
	}
	base, _, _ := strings.Cut(mt.String(), ";")
	return Input{Kind: kind, Payload: data, MIMEType: base}, nil
}

// DecodePayload decodes a base64 file body, tolerating a data URL prefix.
func DecodePayload(b64 string) ([]byte, error) {
	s := strings.TrimSpace(b64)
	if strings.HasPrefix(s, "data:") {
		if _, rest, ok := strings.Cut(s, ","); ok {
			s = rest
		}
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode file data: %w", err)
	}
	return data, nil
}

// Config controls extraction limits and the OCR request.
type Config struct {
	// MaxInputBytes caps the payload size before any work is done.
	MaxInputBytes int

	// MaxPDFPages caps how many pages are read from a PDF.
	MaxPDFPages int

	// ImageTimeout bounds a single OCR call.
	ImageTimeout time.Duration

	// TopicsThreshold is the corpus length above which ExtractWithTopics
	// segments the corpus.
	TopicsThreshold int

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		MaxInputBytes:   MaxInputBytes,
		MaxPDFPages:     MaxPDFPages,
		ImageTimeout:    ImageTimeout,
		TopicsThreshold: corpus.MinIngestTopicsLength,
		MaxTokens:       8192,
		Temperature:     0.1,
	}
}

// UploadConfig is DefaultConfig for the HTTP upload flow, which only
// segments longer material.
func UploadConfig() Config {
	cfg := DefaultConfig()
	cfg.TopicsThreshold = corpus.MinUploadTopicsLength
	return cfg
}

const (
	MaxInputBytes = 10 << 20
	MaxPDFPages   = 50
	ImageTimeout  = 120 * time.Second
)

// Segmenter is the topic source used by ExtractWithTopics.
type Segmenter interface {
	SegmentOrEmpty(ctx context.Context, c corpus.Corpus) []topics.Topic
}

// Extractor normalizes text, PDF and image input into a corpus.
type Extractor struct {
	provider llm.Provider
	cfg      Config
}

// New creates an Extractor. provider may be nil when only text and PDF
// input is expected.
func New(provider llm.Provider, cfg Config) *Extractor {
	return &Extractor{provider: provider, cfg: cfg}
}

// Extract produces a corpus from in. Every failure is an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, in Input) (corpus.Corpus, error) {
	log := logging.FromContext(ctx)

	if e.cfg.MaxInputBytes > 0 && len(in.Payload) > e.cfg.MaxInputBytes {
		return "", &ExtractionError{Kind: in.Kind, Err: &ErrTooLarge{Size: len(in.Payload), Limit: e.cfg.MaxInputBytes}}
	}

	var (
		text string
		err  error
	)
	switch in.Kind {
	case KindText:
		text = string(in.Payload)
	case KindPDF:
		text, err = readPDF(in.Payload, e.cfg.MaxPDFPages)
	case KindImage:
		text, err = e.ocr(ctx, in)
	default:
		err = fmt.Errorf("unsupported input kind %q", in.Kind)
	}
	if err != nil {
		log.Warn().Err(err).Str("kind", string(in.Kind)).Int("bytes", len(in.Payload)).Msg("extraction failed")
		return "", &ExtractionError{Kind: in.Kind, Err: err}
	}

	c := corpus.Normalize(text)
	if err := corpus.Check("extract", c, corpus.MinQuizLength); err != nil {
		ee := &ExtractionError{Kind: in.Kind, Err: err}
		if in.Kind != KindText {
			ee.Message = MsgLowText
		}
		return "", ee
	}

	log.Debug().
		Str("kind", string(in.Kind)).
		Int("bytes", len(in.Payload)).
		Int("chars", c.Len()).
		Msg("content extracted")
	return c, nil
}

// ExtractWithTopics extracts in and, when the corpus is long enough,
// segments it. Topic failures leave Topics nil.
func (e *Extractor) ExtractWithTopics(ctx context.Context, in Input, seg Segmenter) (*Result, error) {
	c, err := e.Extract(ctx, in)
	if err != nil {
		return nil, err
	}
	res := &Result{Corpus: c}
	if seg != nil && c.Len() > e.cfg.TopicsThreshold {
		if ts := seg.SegmentOrEmpty(ctx, c); len(ts) > 0 {
			res.Topics = ts
		}
	}
	return res, nil
}

// IsTimeout reports whether err came from an abandoned OCR call.
func IsTimeout(err error) bool {
	var t *llm.ErrTimeout
	return errors.As(err, &t)
}
