// Package transcriber turns stored call recordings into timestamped
// transcripts and announces them on the bus.
package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/bus"
	"github.com/kestrelvoice/callaudit/internal/openai"
	"github.com/kestrelvoice/callaudit/internal/store"
)

// Store is the persistence surface the transcriber needs.
type Store interface {
	GetCall(ctx context.Context, id uuid.UUID) (*store.CallRow, error)
	SetTranscript(ctx context.Context, id uuid.UUID, transcript, language string, durationSec float64) error
}

// Whisper runs speech-to-text over an audio file.
type Whisper interface {
	Transcribe(ctx context.Context, path string) (*openai.Transcription, error)
}

type Transcriber struct {
	store         Store
	whisper       Whisper
	bus           *bus.Client
	recordingsDir string
	timeout       time.Duration
	logger        *slog.Logger
}

func New(st Store, whisper Whisper, b *bus.Client, recordingsDir string, timeout time.Duration, logger *slog.Logger) *Transcriber {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Transcriber{
		store:         st,
		whisper:       whisper,
		bus:           b,
		recordingsDir: recordingsDir,
		timeout:       timeout,
		logger:        logger,
	}
}

// TranscribeCall fetches the call's recording, runs Whisper and stores the
// formatted transcript. Calls that already have a transcript are skipped.
func (t *Transcriber) TranscribeCall(ctx context.Context, callID uuid.UUID, path string) error {
	call, err := t.store.GetCall(ctx, callID)
	if err != nil {
		return fmt.Errorf("get call: %w", err)
	}
	if call == nil {
		return fmt.Errorf("call %s not found", callID)
	}
	if call.Transcribed {
		t.logger.Info("call already transcribed, skipping", "call_id", callID)
		return nil
	}

	if path == "" {
		path = call.RecordingPath
	}
	if path == "" {
		return fmt.Errorf("call %s has no recording path", callID)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.recordingsDir, path)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	tr, err := t.whisper.Transcribe(ctx, path)
	if err != nil {
		return fmt.Errorf("transcribe %s: %w", path, err)
	}

	transcript := formatTranscript(tr)
	if err := t.store.SetTranscript(ctx, callID, transcript, tr.Language, tr.Duration); err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}

	t.logger.Info("transcript stored",
		"call_id", callID,
		"language", tr.Language,
		"duration_sec", tr.Duration,
		"segments", len(tr.Segments))

	if t.bus != nil {
		if err := t.bus.Publish(bus.SubjectTranscriptStored, bus.TranscriptStoredEvent{CallID: callID.String()}); err != nil {
			t.logger.Error("publish transcript event failed", "call_id", callID, "error", err)
		}
	}
	return nil
}

// HandleRecordingStored is the NATS handler for recording-stored events.
func (t *Transcriber) HandleRecordingStored(subject string, data []byte) {
	var ev bus.RecordingStoredEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		t.logger.Error("bad recording event payload", "subject", subject, "error", err)
		return
	}
	callID, err := uuid.Parse(ev.CallID)
	if err != nil {
		t.logger.Error("bad call id in recording event", "call_id", ev.CallID, "error", err)
		return
	}

	if err := t.TranscribeCall(context.Background(), callID, ev.Path); err != nil {
		t.logger.Error("transcription failed", "call_id", callID, "error", err)
	}
}

// formatTranscript renders segment timestamps when Whisper returned them,
// otherwise falls back to the plain text.
func formatTranscript(tr *openai.Transcription) string {
	if len(tr.Segments) == 0 {
		return strings.TrimSpace(tr.Text)
	}
	var b strings.Builder
	for _, s := range tr.Segments {
		fmt.Fprintf(&b, "[%.1fs-%.1fs] %s\n", s.Start, s.End, strings.TrimSpace(s.Text))
	}
	return strings.TrimSpace(b.String())
}
