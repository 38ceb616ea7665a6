package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ScoreOverview summarizes feedback scores, optionally restricted to
// feedback created since a point in time.
type ScoreOverview struct {
	Calls    int     `json:"calls"`
	AvgScore float64 `json:"avg_score"`
	MinScore int     `json:"min_score"`
	MaxScore int     `json:"max_score"`
}

func (s *Store) ScoreOverview(ctx context.Context, since *time.Time) (*ScoreOverview, error) {
	q := psql.
		Select("COUNT(*)", "COALESCE(AVG(score), 0)", "COALESCE(MIN(score), 0)", "COALESCE(MAX(score), 0)").
		From("feedback")
	if since != nil {
		q = q.Where(sq.GtOrEq{"created_at": *since})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overview query: %w", err)
	}

	var o ScoreOverview
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&o.Calls, &o.AvgScore, &o.MinScore, &o.MaxScore); err != nil {
		return nil, fmt.Errorf("score overview: %w", err)
	}
	return &o, nil
}

// RubricFailureCount is the per-rubric verdict tally used for trend
// detection.
type RubricFailureCount struct {
	RubricID   uuid.UUID `json:"rubric_id"`
	RubricName string    `json:"rubric_name"`
	Total      int       `json:"total"`
	Failed     int       `json:"failed"`
}

func (s *Store) RubricFailureCounts(ctx context.Context, since *time.Time) ([]RubricFailureCount, error) {
	q := psql.
		Select(
			"v.rubric_id",
			"v.rubric_name",
			"COUNT(*) AS total",
			"COUNT(*) FILTER (WHERE v.evaluation = 'non-compliant') AS failed",
		).
		From("feedback_verdicts v").
		Join("feedback f ON f.id = v.feedback_id").
		GroupBy("v.rubric_id", "v.rubric_name").
		OrderBy("failed DESC, total DESC")
	if since != nil {
		q = q.Where(sq.GtOrEq{"f.created_at": *since})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build failure counts query: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("rubric failure counts: %w", err)
	}
	defer rows.Close()

	var counts []RubricFailureCount
	for rows.Next() {
		var c RubricFailureCount
		if err := rows.Scan(&c.RubricID, &c.RubricName, &c.Total, &c.Failed); err != nil {
			return nil, fmt.Errorf("scan failure count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return counts, nil
}
