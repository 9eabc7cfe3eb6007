package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrQuotaExhausted indicates the account ran out of credits (402).
type ErrQuotaExhausted struct {
	Err error
}

func (e *ErrQuotaExhausted) Error() string {
	return fmt.Sprintf("quota exhausted: %v", e.Err)
}

func (e *ErrQuotaExhausted) Unwrap() error { return e.Err }

// ErrTimeout indicates the call was abandoned after its deadline.
type ErrTimeout struct {
	After time.Duration
	Err   error
}

func (e *ErrTimeout) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("LLM request timed out after %s", e.After)
	}
	return "LLM request timed out"
}

func (e *ErrTimeout) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model returned content that is not
// valid JSON after fence stripping, or does not conform to the schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down, unreachable, or
// answered with a non-2xx status not covered by a more specific kind.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// mapStatus classifies an HTTP status code returned by a provider SDK.
func mapStatus(status int, err error) error {
	switch {
	case status == 429:
		return &ErrRateLimit{Err: err}
	case status == 402:
		return &ErrQuotaExhausted{Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}

// contextError converts a deadline into ErrTimeout and passes cancellation
// through. It returns nil for errors the provider mapper should classify.
func contextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ErrTimeout{Err: err}
	case errors.Is(err, context.Canceled):
		return err
	}
	return nil
}

// Messages shown to users for terminal remote failures.
const (
	MsgRateLimited    = "Rate limit exceeded. Please try again in a moment."
	MsgQuotaExhausted = "AI credits depleted. Please add credits to continue."
	MsgTimeout        = "The request timed out. Please try again with a smaller or clearer file."
)

// UserMessage renders err as a short message that tells the user whether
// waiting will help.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return MsgRateLimited
	}
	var quota *ErrQuotaExhausted
	if errors.As(err, &quota) {
		return MsgQuotaExhausted
	}
	var timeout *ErrTimeout
	if errors.As(err, &timeout) {
		return MsgTimeout
	}
	return err.Error()
}
