package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/rubric"
)

// ErrRubricNotFound is returned when an update targets a rubric id that
// does not exist.
var ErrRubricNotFound = errors.New("rubric not found")

// ListActiveRubrics returns active rubrics in insertion order. The order is
// what makes the verdict list, and therefore the score, deterministic.
func (s *Store) ListActiveRubrics(ctx context.Context) ([]rubric.Rubric, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), criteria, active
		FROM rubrics
		WHERE active = true
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list active rubrics: %w", err)
	}
	defer rows.Close()

	var rubrics []rubric.Rubric
	for rows.Next() {
		var r rubric.Rubric
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Criteria, &r.Active); err != nil {
			return nil, fmt.Errorf("scan rubric: %w", err)
		}
		rubrics = append(rubrics, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return rubrics, nil
}

// CreateRubric inserts a new active rubric.
func (s *Store) CreateRubric(ctx context.Context, name, description, criteria string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rubrics (id, name, description, criteria, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, now(), now())`,
		id, name, description, criteria,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert rubric: %w", err)
	}
	return id, nil
}

// SeedRubric inserts a rubric if no rubric with the same name exists.
// Returns whether a row was created.
func (s *Store) SeedRubric(ctx context.Context, r rubric.Rubric) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO rubrics (id, name, description, criteria, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, now(), now())
		ON CONFLICT (name) DO NOTHING`,
		uuid.New(), r.Name, r.Description, r.Criteria,
	)
	if err != nil {
		return false, fmt.Errorf("seed rubric: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeactivateRubric takes a rubric out of future evaluations. Historical
// verdicts referencing it are untouched.
func (s *Store) DeactivateRubric(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE rubrics SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate rubric: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deactivate rubric %s: %w", id, ErrRubricNotFound)
	}
	return nil
}
