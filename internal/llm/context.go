package llm

import "context"

// Purposes label each pipeline stage in the request log.
const (
	PurposeOCR     = "ocr"
	PurposeTopics  = "topic-extract"
	PurposeQuiz    = "quiz-gen"
	PurposeVerify  = "answer-verify"
	purposeUnknown = "unknown"
)

type purposeKey struct{}

// WithPurpose tags ctx with the pipeline stage making the call.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the stage tag of ctx, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return purposeUnknown
}
