package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kestrelvoice/callaudit/internal/verdict"
)

// FeedbackRow is the persisted per-call aggregate: score, narratives, and
// the full verdict list in rubric insertion order.
type FeedbackRow struct {
	ID            uuid.UUID
	CallID        uuid.UUID
	Score         int
	ScoreLabel    string
	Positives     []string
	Opportunities []string
	Verdicts      []verdict.Verdict
	CreatedAt     time.Time
}

// GetFeedback fetches the feedback for a call with its verdicts. Returns
// (nil, nil) when none exists.
func (s *Store) GetFeedback(ctx context.Context, callID uuid.UUID) (*FeedbackRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, call_id, score, score_label, positives, opportunities, created_at
		FROM feedback WHERE call_id = $1`, callID)

	var f FeedbackRow
	err := row.Scan(&f.ID, &f.CallID, &f.Score, &f.ScoreLabel, &f.Positives, &f.Opportunities, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}

	verdicts, err := s.feedbackVerdicts(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.Verdicts = verdicts
	return &f, nil
}

func (s *Store) feedbackVerdicts(ctx context.Context, feedbackID uuid.UUID) ([]verdict.Verdict, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT rubric_id, rubric_name, evaluation, comments, corrected
		FROM feedback_verdicts
		WHERE feedback_id = $1
		ORDER BY position`, feedbackID)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []verdict.Verdict
	for rows.Next() {
		var v verdict.Verdict
		var eval string
		if err := rows.Scan(&v.RubricID, &v.RubricName, &eval, &v.Comments, &v.Corrected); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.Evaluation = verdict.Evaluation(eval)
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return verdicts, nil
}

// InsertFeedback writes a call's feedback and verdicts in one transaction.
// The insert is keyed on call_id with ON CONFLICT DO NOTHING, so the first
// writer wins: when a concurrent request already created the row, this
// returns the existing feedback and created=false. Verdicts are only ever
// written alongside a winning insert, so partial results cannot persist.
func (s *Store) InsertFeedback(ctx context.Context, callID uuid.UUID, score int, label string, verdicts []verdict.Verdict, positives, opportunities []string) (*FeedbackRow, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	feedbackID := uuid.New()
	tag, err := tx.Exec(ctx, `
		INSERT INTO feedback (id, call_id, score, score_label, positives, opportunities, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (call_id) DO NOTHING`,
		feedbackID, callID, score, label, positives, opportunities,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert feedback: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Lost the race; another request already generated feedback.
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			return nil, false, fmt.Errorf("rollback: %w", err)
		}
		existing, err := s.GetFeedback(ctx, callID)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("feedback conflict for call %s but no row found", callID)
		}
		return existing, false, nil
	}

	for i, v := range verdicts {
		_, err := tx.Exec(ctx, `
			INSERT INTO feedback_verdicts (id, feedback_id, rubric_id, rubric_name, position, evaluation, comments, corrected)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), feedbackID, v.RubricID, v.RubricName, i, string(v.Evaluation), v.Comments, v.Corrected,
		)
		if err != nil {
			return nil, false, fmt.Errorf("insert verdict: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}

	return &FeedbackRow{
		ID:            feedbackID,
		CallID:        callID,
		Score:         score,
		ScoreLabel:    label,
		Positives:     positives,
		Opportunities: opportunities,
		Verdicts:      verdicts,
		CreatedAt:     time.Now().UTC(),
	}, true, nil
}
