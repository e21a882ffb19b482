package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/stylequiz/internal/assessment"
)

// Attempt actions.
const (
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionAbandon  = "abandon"
)

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q := sqlite().Insert(tableAttempts).
		Columns("sequence", "timestamp", "attempt_id", "session_id", "subject_id",
			"subject_name", "action", "answered", "correct").
		Values(seq, r.s.stamp(), data.AttemptID, data.SessionID, data.SubjectID,
			data.SubjectName, data.Action, data.Answered, data.Correct)
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q := sqlite().Insert(tableAnswers).
		Columns("sequence", "timestamp", "attempt_id", "session_id", "subject_id",
			"question_id", "difficulty", "option_index", "elapsed_ms", "correct").
		Values(seq, r.s.stamp(), data.AttemptID, data.SessionID, data.SubjectID,
			data.QuestionID, data.Difficulty, data.OptionIndex, data.ElapsedMs, data.Correct)
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) History(ctx context.Context, opts QueryOpts) ([]Attempt, error) {
	q := sqlite().Select("attempt_id", "session_id", "subject_id", "subject_name",
		"action", "answered", "correct", "timestamp").
		From(sqlite().Table(tableAttempts)).
		Where(entsql.In("action", ActionComplete, ActionAbandon)).
		OrderBy(entsql.Desc("sequence"))
	if opts.SubjectID != "" {
		q.Where(entsql.EQ("subject_id", opts.SubjectID))
	}
	if !opts.From.IsZero() {
		q.Where(entsql.GTE("timestamp", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		q.Where(entsql.LTE("timestamp", opts.To.UnixMilli()))
	}
	if opts.Limit > 0 {
		q.Limit(opts.Limit)
	}

	rows, err := r.s.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var ts int64
		if err := rows.Scan(&a.AttemptID, &a.SessionID, &a.SubjectID, &a.SubjectName,
			&a.Action, &a.Answered, &a.Correct, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		a.Accuracy = assessment.Accuracy(a.Correct, a.Answered)
		a.FinishedAt = time.UnixMilli(ts)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *eventRepo) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByDifficulty: map[string]DifficultyStats{}}

	if err := r.attemptCounts(ctx, &st); err != nil {
		return Stats{}, err
	}
	if err := r.answerCounts(ctx, &st); err != nil {
		return Stats{}, err
	}

	apiQ := sqlite().Select(entsql.Count("*"), "COALESCE(SUM(1 - success), 0)").
		From(sqlite().Table(tableAPICalls))
	if err := r.s.queryRow(ctx, apiQ).Scan(&st.APICalls, &st.APIFailures); err != nil {
		return Stats{}, fmt.Errorf("count API calls: %w", err)
	}

	llmQ := sqlite().Select(entsql.Count("*")).From(sqlite().Table(tableLLMRequests))
	if err := r.s.queryRow(ctx, llmQ).Scan(&st.LLMRequests); err != nil {
		return Stats{}, fmt.Errorf("count LLM requests: %w", err)
	}

	st.Accuracy = assessment.Accuracy(st.Correct, st.Answered)
	return st, nil
}

func (r *eventRepo) attemptCounts(ctx context.Context, st *Stats) error {
	q := sqlite().Select("action", entsql.Count("*")).
		From(sqlite().Table(tableAttempts)).
		GroupBy("action")
	rows, err := r.s.query(ctx, q)
	if err != nil {
		return fmt.Errorf("count attempts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return fmt.Errorf("scan attempt counts: %w", err)
		}
		switch action {
		case ActionStart:
			st.AttemptsStarted = n
		case ActionComplete:
			st.AttemptsCompleted = n
		case ActionAbandon:
			st.AttemptsAbandoned = n
		}
	}
	return rows.Err()
}

func (r *eventRepo) answerCounts(ctx context.Context, st *Stats) error {
	q := sqlite().Select("difficulty", entsql.Count("*"),
		"COALESCE(SUM(correct), 0)", "COALESCE(SUM(elapsed_ms), 0)").
		From(sqlite().Table(tableAnswers)).
		GroupBy("difficulty")
	rows, err := r.s.query(ctx, q)
	if err != nil {
		return fmt.Errorf("count answers: %w", err)
	}
	defer rows.Close()

	var totalElapsed int64
	for rows.Next() {
		var difficulty string
		var ds DifficultyStats
		var elapsed int64
		if err := rows.Scan(&difficulty, &ds.Answered, &ds.Correct, &elapsed); err != nil {
			return fmt.Errorf("scan answer counts: %w", err)
		}
		st.ByDifficulty[difficulty] = ds
		st.Answered += ds.Answered
		st.Correct += ds.Correct
		totalElapsed += elapsed
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if st.Answered > 0 {
		st.AvgElapsedMs = totalElapsed / int64(st.Answered)
	}
	return nil
}

func (r *eventRepo) Reset(ctx context.Context) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range eventTables {
		query, args := sqlite().Delete(table).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
