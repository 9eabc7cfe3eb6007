package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidResult is returned by SaveResult when a result's score or total
// disagrees with its answers.
var ErrInvalidResult = errors.New("invalid result")

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // LLM events only: exact purpose match
}

// AnswerData is one graded answer inside a stored result.
type AnswerData struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// ResultData is a completed quiz attempt as handed over by the session.
type ResultData struct {
	Source        string       `json:"source"`
	Topics        []string     `json:"topics"`
	Difficulty    string       `json:"difficulty"`
	QuestionTypes string       `json:"questionTypes"`
	Score         int          `json:"score"`
	Total         int          `json:"total"`
	Answers       []AnswerData `json:"answers"`
}

// Validate checks that Total is the number of answers and Score the number
// of correct ones.
func (d ResultData) Validate() error {
	if d.Total != len(d.Answers) {
		return fmt.Errorf("%w: total %d does not match %d answers", ErrInvalidResult, d.Total, len(d.Answers))
	}
	correct := 0
	for _, a := range d.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if d.Score != correct {
		return fmt.Errorf("%w: score %d does not match %d correct answers", ErrInvalidResult, d.Score, correct)
	}
	return nil
}

// Result is a stored quiz attempt.
type Result struct {
	ID        int       `json:"id"`
	UUID      string    `json:"uuid"`
	Sequence  int64     `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	ResultData
}

// Percentage returns the score as a whole percentage of total.
func (r Result) Percentage() int {
	if r.Total == 0 {
		return 0
	}
	return (r.Score*100 + r.Total/2) / r.Total
}

// MissedAnswer is an incorrect answer together with the result it came from.
type MissedAnswer struct {
	ResultID  int
	Timestamp time.Time
	AnswerData
}

// ResultStats aggregates every stored result.
type ResultStats struct {
	TotalQuizzes int `json:"totalQuizzes"`
	AverageScore int `json:"averageScore"`
	BestScore    int `json:"bestScore"`
}

// ResultRepo stores and queries completed quiz attempts.
type ResultRepo interface {
	// SaveResult persists a result and its answers. It returns the stored row.
	SaveResult(ctx context.Context, data ResultData) (*Result, error)

	// ListResults returns results newest first, without answers.
	ListResults(ctx context.Context, opts QueryOpts) ([]Result, error)

	// GetResult returns a result with its answers, or nil if not found.
	GetResult(ctx context.Context, id int) (*Result, error)

	// MissedAnswers returns incorrect answers across results, newest first.
	MissedAnswers(ctx context.Context, limit int) ([]MissedAnswer, error)

	// Stats returns aggregate scores over every stored result.
	Stats(ctx context.Context) (ResultStats, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage is token usage aggregated by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event, or nil if not found.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates calls and tokens per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates calls and tokens per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
