package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Table and column names shared by the repositories.
const (
	tableResults  = "quiz_results"
	tableAnswers  = "quiz_answers"
	tableLLMCalls = "llm_request_events"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid           TEXT    NOT NULL UNIQUE,
		sequence       INTEGER NOT NULL,
		created_at     INTEGER NOT NULL,
		source         TEXT    NOT NULL DEFAULT '',
		topics         TEXT    NOT NULL DEFAULT '[]',
		difficulty     TEXT    NOT NULL DEFAULT '',
		question_types TEXT    NOT NULL DEFAULT '',
		score          INTEGER NOT NULL,
		total          INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS quiz_results_created_at ON quiz_results (created_at)`,
	`CREATE TABLE IF NOT EXISTS quiz_answers (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		result_id      INTEGER NOT NULL REFERENCES quiz_results (id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		question       TEXT    NOT NULL,
		user_answer    TEXT    NOT NULL,
		correct_answer TEXT    NOT NULL,
		is_correct     INTEGER NOT NULL,
		explanation    TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS quiz_answers_result_id ON quiz_answers (result_id, position)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence       INTEGER NOT NULL,
		created_at     INTEGER NOT NULL,
		provider       TEXT    NOT NULL,
		model          TEXT    NOT NULL,
		purpose        TEXT    NOT NULL,
		input_tokens   INTEGER NOT NULL DEFAULT 0,
		output_tokens  INTEGER NOT NULL DEFAULT 0,
		latency_ms     INTEGER NOT NULL DEFAULT 0,
		success        INTEGER NOT NULL,
		error_message  TEXT    NOT NULL DEFAULT '',
		request_body   TEXT    NOT NULL DEFAULT '',
		response_body  TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON llm_request_events (purpose)`,
	`CREATE TABLE IF NOT EXISTS global_sequence (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`,
	`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`,
}

// migrate creates every table and index that does not exist yet and seeds
// the sequence counter.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, stmt := range ddl {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}

// builder returns an SQLite-flavoured statement builder.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}
