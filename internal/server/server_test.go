package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyquiz/internal/config"
	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/extract"
	"github.com/abhisek/studyquiz/internal/grading"
	"github.com/abhisek/studyquiz/internal/llm"
	"github.com/abhisek/studyquiz/internal/quizgen"
	"github.com/abhisek/studyquiz/internal/store"
	"github.com/abhisek/studyquiz/internal/topics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const biology = "Cells are the basic unit of life. The mitochondria produce ATP through cellular respiration, " +
	"while chloroplasts capture light energy during photosynthesis."

type fixture struct {
	cfg      *config.App
	deps     Deps
	srv      *Server
	provider *llm.MockProvider
	results  store.ResultRepo
}

func newFixture(t *testing.T, mutate func(*config.App), responses ...llm.MockResponse) *fixture {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)
	cfg.RateLimit.Requests = 0
	if mutate != nil {
		mutate(cfg)
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider(responses...)
	deps := Deps{
		Extractor: extract.New(mock, extract.UploadConfig()),
		Segmenter: topics.New(mock, nil, topics.DefaultConfig()),
		Generator: quizgen.New(mock, quizgen.DefaultGeneratorConfig()),
		Verifier:  grading.NewVerifier(mock, grading.DefaultVerifierConfig()),
		Results:   st.ResultRepo(),
	}
	return &fixture{
		cfg:      cfg,
		deps:     deps,
		srv:      New(cfg, zerolog.Nop(), deps),
		provider: mock,
		results:  deps.Results,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			r = strings.NewReader(s)
		} else {
			raw, err := json.Marshal(body)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

// rebuild replaces the server with one built from the same deps and opts.
func (f *fixture) rebuild(opts ...Option) {
	f.srv = New(f.cfg, zerolog.Nop(), f.deps, opts...)
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func mcqJSON(n int) json.RawMessage {
	var qs []map[string]any
	for i := range n {
		qs = append(qs, map[string]any{
			"question":       fmt.Sprintf("Which organelle is described in fact %d?", i+1),
			"type":           "multiple_choice",
			"options":        []string{"Mitochondria", "Nucleus", "Ribosome", "Chloroplast"},
			"correct_answer": "Mitochondria",
			"explanation":    "The notes say mitochondria produce ATP.",
		})
	}
	raw, _ := json.Marshal(map[string]any{"questions": qs})
	return raw
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	rec, body := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestPreflight(t *testing.T) {
	f := newFixture(t, nil)
	for _, fn := range []string{"extract-content", "extract-topics", "generate-quiz", "verify-answer"} {
		t.Run(fn, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/functions/v1/"+fn, nil)
			req.Header.Set("Origin", "http://localhost:5173")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "apikey, content-type")
			rec := httptest.NewRecorder()
			f.srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "apikey")
		})
	}

	rec, _ := f.do(t, http.MethodOptions, "/functions/v1/generate-quiz", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "bare OPTIONS without an origin")
	assert.Zero(t, f.provider.CallCount())
}

func TestExtractContent_Text(t *testing.T) {
	f := newFixture(t, nil)
	rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-content", map[string]any{
		"fileData": b64("  " + biology + "\n"),
		"mimeType": "text/plain",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, biology, body["content"])
	assert.Nil(t, body["topics"])
	assert.Zero(t, f.provider.CallCount())
}

func TestExtractContent_WithTopics(t *testing.T) {
	long := strings.Repeat(biology+" ", 8)
	f := newFixture(t, nil, llm.MockResponse{Content: json.RawMessage(`{"topics":[
		{"id":"cells","title":"Cells","description":"Basic unit of life","subtopics":["Organelles"]}]}`)})

	rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-content", map[string]any{
		"fileData":      b64(long),
		"extractTopics": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ts, ok := body["topics"].([]any)
	require.True(t, ok)
	require.Len(t, ts, 1)
	assert.Equal(t, "Cells", ts[0].(map[string]any)["title"])
}

func TestExtractContent_TopicsNeedLongerUpload(t *testing.T) {
	medium := strings.Repeat(biology+" ", 5)
	require.Less(t, len(medium), corpus.MinUploadTopicsLength)
	f := newFixture(t, nil)

	rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-content", map[string]any{
		"fileData":      b64(medium),
		"extractTopics": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, body["topics"])
	assert.Zero(t, f.provider.CallCount())
}

func TestExtractContent_TopicFailureDegrades(t *testing.T) {
	long := strings.Repeat(biology+" ", 8)
	f := newFixture(t, nil, llm.MockResponse{Content: json.RawMessage(`not json`)})

	rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-content", map[string]any{
		"fileData":      b64(long),
		"mimeType":      "text/plain",
		"extractTopics": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["content"])
	assert.Nil(t, body["topics"])
}

func TestExtractContent_Failures(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		resp    []llm.MockResponse
		wantErr string
	}{
		{"no file data", map[string]any{"mimeType": "text/plain"}, nil, "No file data provided"},
		{"bad json", `{"fileData":`, nil, "Invalid request body"},
		{"too short", map[string]any{"fileData": b64("short"), "mimeType": "text/plain"}, nil, "at least 50"},
		{"unsupported type", map[string]any{"fileData": b64(biology), "mimeType": "application/zip"}, nil, "unsupported file type"},
		{"ocr rate limited", map[string]any{"fileData": b64("png"), "mimeType": "image/png"},
			[]llm.MockResponse{{Err: &llm.ErrRateLimit{}}}, llm.MsgRateLimited},
		{"ocr quota", map[string]any{"fileData": b64("png"), "mimeType": "image/png"},
			[]llm.MockResponse{{Err: &llm.ErrQuotaExhausted{}}}, llm.MsgQuotaExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, tt.resp...)
			rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-content", tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, body["error"], tt.wantErr)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	assert.Greater(t, MaxBodyBytes, int64(base64.StdEncoding.EncodedLen(extract.MaxInputBytes)))

	f := newFixture(t, nil)
	f.rebuild(WithMaxBodyBytes(1024))
	oversized := map[string]any{"fileData": b64(strings.Repeat(biology, 20)), "mimeType": "text/plain"}

	rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-content", oversized)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errBodyTooLarge.Error(), body["error"])
	assert.Zero(t, f.provider.CallCount())

	rec, body = f.do(t, http.MethodPost, "/functions/v1/verify-answer", map[string]any{
		"question": strings.Repeat(biology, 20), "userAnswer": "ATP", "correctAnswer": "ATP",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errBodyTooLarge.Error(), body["error"])
	assert.Equal(t, false, body["isCorrect"])

	rec, body = f.do(t, http.MethodPost, "/results", map[string]any{"source": strings.Repeat("x", 2048)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errBodyTooLarge.Error(), body["error"])

	rec, _ = f.do(t, http.MethodPost, "/functions/v1/extract-content",
		map[string]any{"fileData": b64(biology), "mimeType": "text/plain"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractTopics(t *testing.T) {
	long := strings.Repeat(biology+" ", 2)
	f := newFixture(t, nil, llm.MockResponse{Content: json.RawMessage(`{"topics":[
		{"id":"t1","title":"Respiration","description":"ATP","subtopics":["Glycolysis"]},
		{"id":"t1","title":"Photosynthesis","description":"Light","subtopics":[]}]}`)})

	rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-topics", map[string]any{"content": long})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ts := body["topics"].([]any)
	require.Len(t, ts, 2)
	assert.NotEqual(t, ts[0].(map[string]any)["id"], ts[1].(map[string]any)["id"])
}

func TestExtractTopics_TooShort(t *testing.T) {
	f := newFixture(t, nil)
	rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-topics", map[string]any{"content": "tiny"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, topics.MsgTooShort, body["error"])
	assert.Zero(t, f.provider.CallCount())
}

func TestGenerateQuiz(t *testing.T) {
	f := newFixture(t, nil, llm.MockResponse{Content: mcqJSON(5)})
	rec, body := f.do(t, http.MethodPost, "/functions/v1/generate-quiz", map[string]any{
		"content":        biology,
		"selectedTopics": []string{"Cell Structure"},
		"config":         map[string]any{"numQuestions": 5, "difficulty": "easy", "questionTypes": "mcq"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	qs := body["questions"].([]any)
	require.Len(t, qs, 5)
	for _, q := range qs {
		m := q.(map[string]any)
		assert.Equal(t, "multiple_choice", m["type"])
		assert.Contains(t, m["options"], m["correct_answer"])
	}

	require.Equal(t, 1, f.provider.CallCount())
	assert.Contains(t, f.provider.Calls[0].Messages[0].Content, "Cell Structure")
}

func TestGenerateQuiz_DefaultConfig(t *testing.T) {
	f := newFixture(t, nil, llm.MockResponse{Content: mcqJSON(7)})
	rec, body := f.do(t, http.MethodPost, "/functions/v1/generate-quiz", map[string]any{"content": biology})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, body["questions"], 7)
	assert.Contains(t, f.provider.Calls[0].Messages[0].Content, "Generate exactly 7 questions")
}

func TestGenerateQuiz_Failures(t *testing.T) {
	tests := []struct {
		name      string
		body      any
		resp      []llm.MockResponse
		wantErr   string
		wantCalls int
	}{
		{"short content", map[string]any{"content": strings.Repeat("a", 49)}, nil, quizgen.MsgTooShort, 0},
		{"too few questions", map[string]any{"content": biology, "config": map[string]any{
			"numQuestions": 2, "difficulty": "easy", "questionTypes": "mcq"}}, nil, "", 0},
		{"missing content", map[string]any{}, nil, "No content provided", 0},
		{"unparsable", map[string]any{"content": biology},
			[]llm.MockResponse{{Content: json.RawMessage("Sure! Here are your questions.")}}, quizgen.MsgUnparsable, 1},
		{"quota", map[string]any{"content": biology},
			[]llm.MockResponse{{Err: &llm.ErrQuotaExhausted{}}}, llm.MsgQuotaExhausted, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, tt.resp...)
			rec, body := f.do(t, http.MethodPost, "/functions/v1/generate-quiz", tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotEmpty(t, body["error"])
			if tt.wantErr != "" {
				assert.Contains(t, body["error"], tt.wantErr)
			}
			assert.Equal(t, tt.wantCalls, f.provider.CallCount())
		})
	}
}

func TestVerifyAnswer(t *testing.T) {
	f := newFixture(t, nil, llm.MockResponse{Content: json.RawMessage(`{"isCorrect":true,"reasoning":"Same concept."}`)})
	rec, body := f.do(t, http.MethodPost, "/functions/v1/verify-answer", map[string]any{
		"question":      "What produces ATP?",
		"userAnswer":    "the mitochondrion",
		"correctAnswer": "Mitochondria",
		"context":       biology,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["isCorrect"])
	assert.Equal(t, "Same concept.", body["reasoning"])
}

func TestVerifyAnswer_Failure(t *testing.T) {
	f := newFixture(t, nil, llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
	rec, body := f.do(t, http.MethodPost, "/functions/v1/verify-answer", map[string]any{
		"question": "q", "userAnswer": "a", "correctAnswer": "b",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["isCorrect"])
	assert.NotEmpty(t, body["error"])
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, func(cfg *config.App) { cfg.RateLimit.Requests = 2 })

	for range 2 {
		rec, _ := f.do(t, http.MethodPost, "/functions/v1/extract-topics", map[string]any{"content": "x"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}
	rec, body := f.do(t, http.MethodPost, "/functions/v1/extract-topics", map[string]any{"content": "x"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, body["error"])

	rec, _ = f.do(t, http.MethodOptions, "/functions/v1/extract-topics", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "preflights are not limited")

	rec, _ = f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, nil, llm.MockResponse{Content: mcqJSON(3)})
	f.do(t, http.MethodPost, "/functions/v1/generate-quiz", map[string]any{
		"content": biology,
		"config":  map[string]any{"numQuestions": 3, "difficulty": "easy", "questionTypes": "mcq"},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	text := rec.Body.String()
	assert.Contains(t, text, `studyquiz_http_requests_total{endpoint="/functions/v1/generate-quiz",method="POST",status="200"} 1`)
	assert.Contains(t, text, `studyquiz_generated_questions_total{outcome="kept"} 3`)
}

func TestResults(t *testing.T) {
	f := newFixture(t, nil)

	data := store.ResultData{
		Source:        "notes.txt",
		Difficulty:    "easy",
		QuestionTypes: "mixed",
		Score:         1,
		Total:         2,
		Answers: []store.AnswerData{
			{Question: "Q1", UserAnswer: "True", CorrectAnswer: "True", IsCorrect: true},
			{Question: "Q2", UserAnswer: "Nucleus", CorrectAnswer: "Mitochondria", Explanation: "ATP"},
		},
	}
	rec, saved := f.do(t, http.MethodPost, "/results", data)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := int(saved["id"].(float64))

	rec, body := f.do(t, http.MethodGet, "/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["results"], 1)

	rec, body = f.do(t, http.MethodGet, fmt.Sprintf("/results/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["answers"], 2)

	rec, _ = f.do(t, http.MethodGet, "/results/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = f.do(t, http.MethodGet, "/results/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["totalQuizzes"])
	assert.Equal(t, float64(50), body["averageScore"])

	rec, body = f.do(t, http.MethodGet, "/review?shuffle=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cards := body["cards"].([]any)
	require.Len(t, cards, 1)
	assert.Equal(t, "Mitochondria", cards[0].(map[string]any)["correctAnswer"])
}

func TestResults_Validation(t *testing.T) {
	f := newFixture(t, nil)

	rec, _ := f.do(t, http.MethodPost, "/results", store.ResultData{Score: 3, Total: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/results?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/results/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResults_ScoreMustMatchAnswers(t *testing.T) {
	f := newFixture(t, nil)

	wrong := store.AnswerData{Question: "Q", UserAnswer: "a", CorrectAnswer: "b"}
	rec, body := f.do(t, http.MethodPost, "/results", store.ResultData{
		Score:   3,
		Total:   3,
		Answers: []store.AnswerData{wrong, wrong, wrong},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "score 3 does not match 0 correct answers")

	rec, body = f.do(t, http.MethodGet, "/results/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["totalQuizzes"])
	assert.Equal(t, float64(0), body["bestScore"])
}

func TestResults_DisabledWithoutStore(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{})
	require.NoError(t, err)
	srv := New(cfg, zerolog.Nop(), Deps{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/results", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/verify-answer", strings.NewReader(`{}`))
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
