package store

import (
	"context"
	"fmt"
	"strings"
)

func (r *eventRepo) AppendAttempt(ctx context.Context, data AttemptEventData) error {
	return r.insert(ctx, "attempt",
		`INSERT INTO attempt_events
			(sequence, timestamp, trigger_id, attempt, step, success, status_code, error_message, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.TriggerID, data.Attempt, data.Step, data.Success,
		data.StatusCode, data.ErrorMessage, data.LatencyMs,
	)
}

func (r *eventRepo) AppendOutcome(ctx context.Context, data OutcomeEventData) error {
	return r.insert(ctx, "outcome",
		`INSERT INTO outcome_events
			(sequence, timestamp, trigger_id, state, attempts, questions, answered, feedback_id, route, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.TriggerID, data.State, data.Attempts, data.Questions, data.Answered,
		data.FeedbackID, data.Route, data.ErrorMessage,
	)
}

func (r *eventRepo) RecentOutcomes(ctx context.Context, opts QueryOpts) ([]OutcomeEventRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UTC())
	}
	if !opts.To.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, opts.To.UTC())
	}

	q := `SELECT id, sequence, timestamp, trigger_id, state, attempts, questions, answered,
			feedback_id, route, error_message
		FROM outcome_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeEventRecord
	for rows.Next() {
		var rec OutcomeEventRecord
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.TriggerID, &rec.State,
			&rec.Attempts, &rec.Questions, &rec.Answered,
			&rec.FeedbackID, &rec.Route, &rec.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) AttemptsForTrigger(ctx context.Context, triggerID string) ([]AttemptEventRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sequence, timestamp, trigger_id, attempt, step, success, status_code, error_message, latency_ms
		FROM attempt_events
		WHERE trigger_id = ?
		ORDER BY sequence ASC`, triggerID)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptEventRecord
	for rows.Next() {
		var rec AttemptEventRecord
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.TriggerID, &rec.Attempt, &rec.Step,
			&rec.Success, &rec.StatusCode, &rec.ErrorMessage, &rec.LatencyMs,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
