package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/studyquiz/internal/logging"
	"github.com/abhisek/studyquiz/internal/store"
)

// LoggingProvider is a decorator that logs every LLM request and records it
// as an event when a repository is attached.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with request logging. repo may be nil.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	logger := logging.FromContext(ctx)
	event := logger.Debug()
	if err != nil {
		event = logger.Warn().Err(err)
	}
	event.
		Str("purpose", purpose).
		Str("model", data.Model).
		Int64("latency_ms", data.LatencyMs).
		Int("input_tokens", data.InputTokens).
		Int("output_tokens", data.OutputTokens).
		Int("attachments", len(req.Attachments)).
		Msg("llm request")

	if l.eventRepo != nil {
		// Recording is best effort; the caller still gets the response.
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			logger.Warn().Err(logErr).Msg("failed to record LLM request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
// Attachment bytes are summarized rather than stored.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	for _, a := range req.Attachments {
		fmt.Fprintf(&b, "[attachment: %s, %d bytes]\n", a.MIMEType, len(a.Data))
	}

	if req.Schema != nil {
		if schemaDef, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}
