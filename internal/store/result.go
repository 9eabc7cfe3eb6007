package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// resultRepo implements ResultRepo with ent's SQL builders.
type resultRepo struct {
	drv *entsql.Driver
}

var resultColumns = []string{
	"id", "uuid", "sequence", "created_at", "source", "topics",
	"difficulty", "question_types", "score", "total",
}

type resultRow struct {
	ID            int    `sql:"id"`
	UUID          string `sql:"uuid"`
	Sequence      int64  `sql:"sequence"`
	CreatedAt     int64  `sql:"created_at"`
	Source        string `sql:"source"`
	Topics        string `sql:"topics"`
	Difficulty    string `sql:"difficulty"`
	QuestionTypes string `sql:"question_types"`
	Score         int    `sql:"score"`
	Total         int    `sql:"total"`
}

type answerRow struct {
	ResultID      int    `sql:"result_id"`
	CreatedAt     int64  `sql:"created_at"`
	Question      string `sql:"question"`
	UserAnswer    string `sql:"user_answer"`
	CorrectAnswer string `sql:"correct_answer"`
	IsCorrect     bool   `sql:"is_correct"`
	Explanation   string `sql:"explanation"`
}

func (r *resultRepo) SaveResult(ctx context.Context, data ResultData) (*Result, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	topics := data.Topics
	if topics == nil {
		topics = []string{}
	}
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return nil, fmt.Errorf("marshal topics: %w", err)
	}

	now := time.Now().UTC()
	id := uuid.NewString()

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	seqNum, err := nextSequence(ctx, tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	query, args := builder().Insert(tableResults).
		Columns("uuid", "sequence", "created_at", "source", "topics", "difficulty", "question_types", "score", "total").
		Values(id, seqNum, now.UnixNano(), data.Source, string(topicsJSON), data.Difficulty, data.QuestionTypes, data.Score, data.Total).
		Query()

	var res sql.Result
	if err := tx.Exec(ctx, query, args, &res); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert result: %w", err)
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("result id: %w", err)
	}

	if len(data.Answers) > 0 {
		ins := builder().Insert(tableAnswers).
			Columns("result_id", "position", "question", "user_answer", "correct_answer", "is_correct", "explanation")
		for i, a := range data.Answers {
			ins.Values(rowID, i, a.Question, a.UserAnswer, a.CorrectAnswer, a.IsCorrect, a.Explanation)
		}
		query, args := ins.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("insert answers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit result: %w", err)
	}

	data.Topics = topics
	return &Result{
		ID:         int(rowID),
		UUID:       id,
		Sequence:   seqNum,
		Timestamp:  time.Unix(0, now.UnixNano()).UTC(),
		ResultData: data,
	}, nil
}

func (r *resultRepo) ListResults(ctx context.Context, opts QueryOpts) ([]Result, error) {
	sel := builder().Select(resultColumns...).From(entsql.Table(tableResults))
	applyQueryOpts(sel, opts)

	rows, err := r.selectResults(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	out := make([]Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toResult())
	}
	return out, nil
}

func (r *resultRepo) GetResult(ctx context.Context, id int) (*Result, error) {
	sel := builder().Select(resultColumns...).
		From(entsql.Table(tableResults)).
		Where(entsql.EQ("id", id))

	rows, err := r.selectResults(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	result := rows[0].toResult()

	query, args := builder().
		Select("result_id", "question", "user_answer", "correct_answer", "is_correct", "explanation").
		From(entsql.Table(tableAnswers)).
		Where(entsql.EQ("result_id", id)).
		OrderBy("position").
		Query()

	var answers []answerRow
	if err := r.scan(ctx, query, args, &answers); err != nil {
		return nil, fmt.Errorf("get answers: %w", err)
	}
	result.Answers = make([]AnswerData, 0, len(answers))
	for _, a := range answers {
		result.Answers = append(result.Answers, a.toAnswer())
	}
	return &result, nil
}

func (r *resultRepo) MissedAnswers(ctx context.Context, limit int) ([]MissedAnswer, error) {
	// Both tables carry explicit aliases: Join would otherwise assign one to
	// the results table after its columns were already rendered.
	a := entsql.Table(tableAnswers).As("a")
	res := entsql.Table(tableResults).As("r")

	sel := builder().Select(
		entsql.As(a.C("result_id"), "result_id"),
		entsql.As(res.C("created_at"), "created_at"),
		entsql.As(a.C("question"), "question"),
		entsql.As(a.C("user_answer"), "user_answer"),
		entsql.As(a.C("correct_answer"), "correct_answer"),
		entsql.As(a.C("is_correct"), "is_correct"),
		entsql.As(a.C("explanation"), "explanation"),
	).
		From(a).
		Join(res).On(a.C("result_id"), res.C("id")).
		Where(entsql.EQ(a.C("is_correct"), false)).
		OrderBy(entsql.Desc(res.C("sequence")), a.C("position"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	var rows []answerRow
	if err := r.scan(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query missed answers: %w", err)
	}

	out := make([]MissedAnswer, 0, len(rows))
	for _, row := range rows {
		out = append(out, MissedAnswer{
			ResultID:   row.ResultID,
			Timestamp:  time.Unix(0, row.CreatedAt).UTC(),
			AnswerData: row.toAnswer(),
		})
	}
	return out, nil
}

func (r *resultRepo) Stats(ctx context.Context) (ResultStats, error) {
	// Percentages are computed per row so that quizzes of different
	// lengths weigh equally in the average.
	pct := "(score * 100.0 / total)"
	query, args := builder().Select(
		entsql.As(entsql.Count("*"), "quizzes"),
		entsql.As(entsql.Avg(pct), "average"),
		entsql.As(entsql.Max(pct), "best"),
	).
		From(entsql.Table(tableResults)).
		Where(entsql.GT("total", 0)).
		Query()

	var rows []struct {
		Quizzes int             `sql:"quizzes"`
		Average sql.NullFloat64 `sql:"average"`
		Best    sql.NullFloat64 `sql:"best"`
	}
	if err := r.scan(ctx, query, args, &rows); err != nil {
		return ResultStats{}, fmt.Errorf("query stats: %w", err)
	}
	if len(rows) == 0 {
		return ResultStats{}, nil
	}
	return ResultStats{
		TotalQuizzes: rows[0].Quizzes,
		AverageScore: int(math.Round(rows[0].Average.Float64)),
		BestScore:    int(math.Round(rows[0].Best.Float64)),
	}, nil
}

func (r *resultRepo) selectResults(ctx context.Context, sel *entsql.Selector) ([]resultRow, error) {
	query, args := sel.Query()
	var rows []resultRow
	if err := r.scan(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *resultRepo) scan(ctx context.Context, query string, args []any, v any) error {
	return scanAll(ctx, r.drv, query, args, v)
}

func (row resultRow) toResult() Result {
	var topics []string
	if err := json.Unmarshal([]byte(row.Topics), &topics); err != nil || topics == nil {
		topics = []string{}
	}
	return Result{
		ID:        row.ID,
		UUID:      row.UUID,
		Sequence:  row.Sequence,
		Timestamp: time.Unix(0, row.CreatedAt).UTC(),
		ResultData: ResultData{
			Source:        row.Source,
			Topics:        topics,
			Difficulty:    row.Difficulty,
			QuestionTypes: row.QuestionTypes,
			Score:         row.Score,
			Total:         row.Total,
		},
	}
}

func (row answerRow) toAnswer() AnswerData {
	return AnswerData{
		Question:      row.Question,
		UserAnswer:    row.UserAnswer,
		CorrectAnswer: row.CorrectAnswer,
		IsCorrect:     row.IsCorrect,
		Explanation:   row.Explanation,
	}
}

// applyQueryOpts adds the sequence/time window, ordering and limit shared by
// every list query. Rows are returned newest first.
func applyQueryOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("created_at", opts.From.UnixNano()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("created_at", opts.To.UnixNano()))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
}

// scanAll runs query and scans every row into v, a pointer to a slice.
func scanAll(ctx context.Context, drv *entsql.Driver, query string, args []any, v any) error {
	var rows entsql.Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, v)
}
