package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/studyquiz/internal/logging"
)

// retryClass says how a failed call may be repeated.
type retryClass int

const (
	retryNever retryClass = iota
	retryOnce
	retryAlways
)

// classify maps an error to its retry class. Quota, timeout, token limit
// and context errors are final: repeating the call cannot change them.
func classify(err error) retryClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}
	var (
		maxTok  *ErrMaxTokensExceeded
		quota   *ErrQuotaExhausted
		timeout *ErrTimeout
		invalid *ErrInvalidResponse
	)
	switch {
	case errors.As(err, &maxTok), errors.As(err, &quota), errors.As(err, &timeout):
		return retryNever
	case errors.As(err, &invalid):
		return retryOnce
	}
	// Rate limits, unavailable providers and transport failures.
	return retryAlways
}

// RetryProvider repeats transient failures with exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p. MaxAttempts below 1 is treated as a single attempt,
// which is also the default: the pipeline surfaces failures instead of
// retrying them unless an operator opts in.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	retriedInvalid := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if attempt >= r.config.MaxAttempts {
			return nil, err
		}

		switch classify(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if retriedInvalid {
				return nil, err
			}
			retriedInvalid = true
		}

		wait := r.backoff(attempt, err)
		log := logging.FromContext(ctx)
		log.Debug().
			Err(err).
			Str("purpose", PurposeFrom(ctx)).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("retrying LLM call")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff returns the wait before attempt+1. A server-provided Retry-After
// wins but is capped at MaxWait.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return min(rl.RetryAfter, r.config.MaxWait)
	}

	base := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt-1))
	base = math.Min(base, float64(r.config.MaxWait))
	// ±20% jitter.
	wait := base * (0.8 + 0.4*rand.Float64())
	return time.Duration(wait)
}
