package grading

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/studyquiz/internal/corpus"
	"github.com/abhisek/studyquiz/internal/llm"
	"github.com/abhisek/studyquiz/internal/quizgen"
)

var notes = corpus.Normalize(strings.Repeat("The mitochondria is the powerhouse of the cell. ", 40))

func TestExactMatch(t *testing.T) {
	tests := []struct {
		user, expected string
		want           bool
	}{
		{"true", "True", true},
		{"  Mitochondria\n", "mitochondria", true},
		{"MITOCHONDRIA", "Mitochondria", true},
		{"mitochondrion", "Mitochondria", false},
		{"the mitochondria", "Mitochondria", false},
		{"", "True", false},
	}
	for _, tt := range tests {
		if got := ExactMatch(tt.user, tt.expected); got != tt.want {
			t.Errorf("ExactMatch(%q, %q) = %v, want %v", tt.user, tt.expected, got, tt.want)
		}
	}
}

func TestGrade_ClosedTypesAreExact(t *testing.T) {
	mock := llm.NewMockProvider()
	g := NewGrader(NewVerifier(mock, DefaultVerifierConfig()), notes)
	tf := quizgen.Question{Question: "Cells have mitochondria.", Type: quizgen.TypeTrueFalse, CorrectAnswer: "True"}
	mc := quizgen.Question{Question: "Which?", Type: quizgen.TypeMultipleChoice, Options: []string{"A1", "B2", "C3", "D4"}, CorrectAnswer: "C3"}

	for i := 0; i < 2; i++ {
		out := g.Grade(context.Background(), tf, "true")
		if !out.IsCorrect || out.Method != MethodExact {
			t.Fatalf("run %d: expected exact correct, got %+v", i, out)
		}
	}
	if out := g.Grade(context.Background(), mc, "b2"); out.IsCorrect {
		t.Error("expected wrong option to be incorrect")
	}
	if mock.CallCount() != 0 {
		t.Errorf("closed questions should not call the verifier, got %d calls", mock.CallCount())
	}
}

func TestGrade_ShortAnswerUsesVerifier(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"isCorrect": true, "reasoning": "Same organelle, different wording."}`),
	})
	g := NewGrader(NewVerifier(mock, DefaultVerifierConfig()), notes)
	q := quizgen.Question{Question: "What is the powerhouse of the cell?", Type: quizgen.TypeShortAnswer, CorrectAnswer: "The mitochondria"}

	out := g.Grade(context.Background(), q, "mitochondrion")
	if !out.IsCorrect || out.Method != MethodAI {
		t.Fatalf("expected AI correct verdict, got %+v", out)
	}
	if out.Reasoning == "" {
		t.Error("expected reasoning")
	}

	req := mock.Calls[0]
	if req.Temperature != 0.3 {
		t.Errorf("expected temperature 0.3, got %v", req.Temperature)
	}
	msg := req.Messages[0].Content
	if !strings.Contains(msg, "Student's Answer: mitochondrion") || !strings.Contains(msg, "Expected Answer: The mitochondria") {
		t.Errorf("unexpected prompt %q", msg)
	}
}

func TestGrade_FallbackWhenVerifierUnreachable(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		want     bool
	}{
		{"same word different case", "Mitochondria", true},
		{"paraphrase has no tolerance", "the powerhouse of the cell", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("dial tcp: connection refused")}})
			g := NewGrader(NewVerifier(mock, DefaultVerifierConfig()), notes)
			q := quizgen.Question{Question: "What produces ATP?", Type: quizgen.TypeShortAnswer, CorrectAnswer: tt.expected}

			out := g.Grade(context.Background(), q, "mitochondria")
			if out.IsCorrect != tt.want || out.Method != MethodFallback {
				t.Fatalf("got %+v, want IsCorrect=%v via fallback", out, tt.want)
			}
		})
	}
}

func TestGrade_FallbackOnUnparsableVerdict(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`I think it's right`)})
	g := NewGrader(NewVerifier(mock, DefaultVerifierConfig()), notes)
	q := quizgen.Question{Question: "What produces ATP?", Type: quizgen.TypeShortAnswer, CorrectAnswer: "Mitochondria"}

	out := g.Grade(context.Background(), q, "mitochondria")
	if !out.IsCorrect || out.Method != MethodFallback {
		t.Fatalf("expected exact fallback, got %+v", out)
	}
}

func TestGrade_NoVerifier(t *testing.T) {
	g := NewGrader(nil, notes)
	q := quizgen.Question{Question: "What produces ATP?", Type: quizgen.TypeShortAnswer, CorrectAnswer: "Mitochondria"}
	out := g.Grade(context.Background(), q, " mitochondria ")
	if !out.IsCorrect || out.Method != MethodExact {
		t.Fatalf("expected exact match, got %+v", out)
	}
}

func TestVerify_ContextIsBounded(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"isCorrect": false, "reasoning": "no"}`)})
	v := NewVerifier(mock, DefaultVerifierConfig())

	long := strings.Repeat("x", ContextLimit) + "TAIL"
	verdict, err := v.Verify(context.Background(), VerifyRequest{Question: "Q", UserAnswer: "a", CorrectAnswer: "b", Context: long})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.IsCorrect {
		t.Error("expected incorrect verdict")
	}
	msg := mock.Calls[0].Messages[0].Content
	if strings.Contains(msg, "TAIL") {
		t.Error("context should be truncated")
	}
	if !strings.Contains(msg, strings.Repeat("x", ContextLimit)) {
		t.Error("context should keep the first ContextLimit characters")
	}
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resp    llm.MockResponse
		wantMsg string
	}{
		{"unparsable", llm.MockResponse{Content: json.RawMessage(`{"isCorrect": tru`)}, MsgUnparsable},
		{"schema rejected", llm.MockResponse{Err: &llm.ErrInvalidResponse{Err: errors.New("missing isCorrect")}}, MsgUnparsable},
		{"rate limited", llm.MockResponse{Err: &llm.ErrRateLimit{}}, "LLM verification failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(llm.NewMockProvider(tt.resp), DefaultVerifierConfig())
			_, err := v.Verify(context.Background(), VerifyRequest{Question: "Q", UserAnswer: "a", CorrectAnswer: "b"})
			if err == nil || !strings.HasPrefix(err.Error(), tt.wantMsg) {
				t.Fatalf("expected error starting with %q, got %v", tt.wantMsg, err)
			}
		})
	}
}
