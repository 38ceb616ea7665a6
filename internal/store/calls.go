package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CallRow is the slice of a call the pipeline needs: its transcript (empty
// until transcription completes) and the recording location.
type CallRow struct {
	ID            uuid.UUID
	Transcript    string
	RecordingPath string
	Transcribed   bool
}

// GetCall fetches a call by ID. Returns (nil, nil) when the call does not
// exist.
func (s *Store) GetCall(ctx context.Context, id uuid.UUID) (*CallRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, COALESCE(transcript, ''), COALESCE(recording_path, ''), transcribed
		FROM calls WHERE id = $1`, id)

	var c CallRow
	err := row.Scan(&c.ID, &c.Transcript, &c.RecordingPath, &c.Transcribed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get call: %w", err)
	}
	return &c, nil
}

// SetTranscript stores the transcription output for a call and marks it
// transcribed.
func (s *Store) SetTranscript(ctx context.Context, id uuid.UUID, transcript, language string, durationSec float64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE calls
		SET transcript = $1, language = $2, duration_seconds = $3, transcribed = true, updated_at = now()
		WHERE id = $4`,
		transcript, language, durationSec, id,
	)
	if err != nil {
		return fmt.Errorf("set transcript: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set transcript: call %s not found", id)
	}
	return nil
}
