package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builders.
type eventRepo struct {
	drv *entsql.Driver
}

var llmEventColumns = []string{
	"id", "sequence", "created_at", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

type llmEventRow struct {
	ID           int    `sql:"id"`
	Sequence     int64  `sql:"sequence"`
	CreatedAt    int64  `sql:"created_at"`
	Provider     string `sql:"provider"`
	Model        string `sql:"model"`
	Purpose      string `sql:"purpose"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
	LatencyMs    int64  `sql:"latency_ms"`
	Success      bool   `sql:"success"`
	ErrorMessage string `sql:"error_message"`
	RequestBody  string `sql:"request_body"`
	ResponseBody string `sql:"response_body"`
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := nextSequence(ctx, r.drv)
	if err != nil {
		return err
	}

	query, args := builder().Insert(tableLLMCalls).
		Columns(llmEventColumns[1:]...).
		Values(
			seqNum, time.Now().UnixNano(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := builder().Select(llmEventColumns...).From(entsql.Table(tableLLMCalls))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	var rows []llmEventRow
	if err := scanAll(ctx, r.drv, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	out := make([]LLMEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEvent())
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	query, args := builder().Select(llmEventColumns...).
		From(entsql.Table(tableLLMCalls)).
		Where(entsql.EQ("id", id)).
		Query()

	var rows []llmEventRow
	if err := scanAll(ctx, r.drv, query, args, &rows); err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	e := rows[0].toEvent()
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "model")
}

func (r *eventRepo) usageBy(ctx context.Context, column string) ([]LLMUsage, error) {
	query, args := builder().Select(
		entsql.As(column, "label"),
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency_ms"),
	).
		From(entsql.Table(tableLLMCalls)).
		GroupBy(column).
		OrderBy(entsql.Desc("calls")).
		Query()

	var rows []struct {
		Label        string  `sql:"label"`
		Calls        int     `sql:"calls"`
		InputTokens  int     `sql:"input_tokens"`
		OutputTokens int     `sql:"output_tokens"`
		AvgLatencyMs float64 `sql:"avg_latency_ms"`
	}
	if err := scanAll(ctx, r.drv, query, args, &rows); err != nil {
		return nil, fmt.Errorf("aggregate LLM usage by %s: %w", column, err)
	}

	out := make([]LLMUsage, 0, len(rows))
	for _, row := range rows {
		u := LLMUsage{
			Calls:        row.Calls,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			AvgLatencyMs: int64(row.AvgLatencyMs),
		}
		if column == "purpose" {
			u.Purpose = row.Label
		} else {
			u.Model = row.Label
		}
		out = append(out, u)
	}
	return out, nil
}

func (row llmEventRow) toEvent() LLMEvent {
	return LLMEvent{
		ID:        row.ID,
		Sequence:  row.Sequence,
		Timestamp: time.Unix(0, row.CreatedAt).UTC(),
		LLMRequestEventData: LLMRequestEventData{
			Provider:     row.Provider,
			Model:        row.Model,
			Purpose:      row.Purpose,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
			LatencyMs:    row.LatencyMs,
			Success:      row.Success,
			ErrorMessage: row.ErrorMessage,
			RequestBody:  row.RequestBody,
			ResponseBody: row.ResponseBody,
		},
	}
}
