// Package analyzer orchestrates the per-call compliance pipeline: load
// transcript and rubrics, evaluate each rubric, aggregate, persist once.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/bus"
	"github.com/kestrelvoice/callaudit/internal/feedback"
	"github.com/kestrelvoice/callaudit/internal/notify"
	"github.com/kestrelvoice/callaudit/internal/rubric"
	"github.com/kestrelvoice/callaudit/internal/scoring"
	"github.com/kestrelvoice/callaudit/internal/store"
	"github.com/kestrelvoice/callaudit/internal/verdict"
)

var (
	ErrCallNotFound    = errors.New("call not found")
	ErrNoTranscript    = errors.New("call has no transcript")
	ErrNoActiveRubrics = errors.New("no active rubrics configured")
)

// Store is the slice of persistence the analyzer needs.
type Store interface {
	GetCall(ctx context.Context, id uuid.UUID) (*store.CallRow, error)
	ListActiveRubrics(ctx context.Context) ([]rubric.Rubric, error)
	GetFeedback(ctx context.Context, callID uuid.UUID) (*store.FeedbackRow, error)
	InsertFeedback(ctx context.Context, callID uuid.UUID, score int, label string, verdicts []verdict.Verdict, positives, opportunities []string) (*store.FeedbackRow, bool, error)
}

// Evaluator runs one rubric against a transcript.
type Evaluator interface {
	Evaluate(ctx context.Context, r rubric.Rubric, transcript string) verdict.Verdict
}

// Result is what analyze returns to callers: the persisted feedback shape.
type Result struct {
	CallID          uuid.UUID         `json:"call_id"`
	Score           int               `json:"score"`
	ScoreLabel      string            `json:"score_label"`
	Verdicts        []verdict.Verdict `json:"verdicts"`
	Positives       []string          `json:"positives"`
	Opportunities   []string          `json:"opportunities"`
	AlreadyAnalyzed bool              `json:"already_analyzed"`
	CreatedAt       time.Time         `json:"created_at"`
}

type Analyzer struct {
	store          Store
	evaluator      Evaluator
	bus            *bus.Client
	webhook        *notify.Webhook
	alertThreshold int
	logger         *slog.Logger
}

// New builds an analyzer. bus and webhook are optional; without them the
// pipeline still runs, just without events or alerts.
func New(s Store, e Evaluator, b *bus.Client, wh *notify.Webhook, alertThreshold int, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		store:          s,
		evaluator:      e,
		bus:            b,
		webhook:        wh,
		alertThreshold: alertThreshold,
		logger:         logger,
	}
}

// AnalyzeCall runs the full pipeline for one call. Feedback is generated at
// most once per call: when it already exists the stored record is returned
// unchanged and no model calls are made.
func (a *Analyzer) AnalyzeCall(ctx context.Context, callID uuid.UUID) (*Result, error) {
	existing, err := a.store.GetFeedback(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	if existing != nil && len(existing.Verdicts) > 0 {
		a.logger.Info("feedback already generated", "call_id", callID, "score", existing.Score)
		return resultFromRow(existing, true), nil
	}

	call, err := a.store.GetCall(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("load call: %w", err)
	}
	if call == nil {
		return nil, fmt.Errorf("%w: %s", ErrCallNotFound, callID)
	}
	if call.Transcript == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTranscript, callID)
	}

	rubrics, err := a.store.ListActiveRubrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rubrics: %w", err)
	}
	if len(rubrics) == 0 {
		return nil, ErrNoActiveRubrics
	}

	a.logger.Info("analyzing call",
		"call_id", callID,
		"rubrics", len(rubrics),
		"transcript_len", len(call.Transcript),
	)

	// Sequential, in rubric insertion order; the verdict list order is what
	// keeps the score reproducible.
	verdicts := make([]verdict.Verdict, 0, len(rubrics))
	for _, r := range rubrics {
		verdicts = append(verdicts, a.evaluator.Evaluate(ctx, r, call.Transcript))
	}

	score := scoring.Score(verdicts)
	label := scoring.Label(score)
	positives := feedback.Positives(verdicts)
	opportunities := feedback.Opportunities(verdicts)

	row, created, err := a.store.InsertFeedback(ctx, callID, score, label, verdicts, positives, opportunities)
	if err != nil {
		return nil, fmt.Errorf("persist feedback: %w", err)
	}

	if !created {
		// A concurrent request won the insert; its feedback is the record.
		a.logger.Info("feedback created concurrently elsewhere", "call_id", callID)
		return resultFromRow(row, true), nil
	}

	a.logger.Info("feedback generated",
		"call_id", callID,
		"score", score,
		"label", label,
		"verdicts", len(verdicts),
	)

	if a.bus != nil {
		if err := a.bus.Publish(bus.SubjectFeedbackCreated, bus.FeedbackCreatedEvent{
			CallID:     callID.String(),
			Score:      score,
			ScoreLabel: label,
		}); err != nil {
			a.logger.Error("failed to publish feedback created", "call_id", callID, "error", err)
		}
	}

	if a.webhook != nil && score < a.alertThreshold {
		if err := a.webhook.PostLowScoreAlert(ctx, callID, score, label, opportunities); err != nil {
			a.logger.Error("failed to post low-score alert", "call_id", callID, "error", err)
		}
	}

	return resultFromRow(row, false), nil
}

// HandleTranscriptStored is the NATS handler that triggers analysis when a
// transcript lands.
func (a *Analyzer) HandleTranscriptStored(subject string, data []byte) {
	ctx := context.Background()

	evt, err := parseTranscriptEvent(data)
	if err != nil {
		a.logger.Error("failed to parse transcript event", "error", err)
		return
	}

	if _, err := a.AnalyzeCall(ctx, evt); err != nil {
		if errors.Is(err, ErrNoActiveRubrics) || errors.Is(err, ErrNoTranscript) {
			a.logger.Warn("skipping analysis", "call_id", evt, "reason", err)
			return
		}
		a.logger.Error("analysis failed", "call_id", evt, "error", err)
	}
}

func resultFromRow(f *store.FeedbackRow, alreadyAnalyzed bool) *Result {
	return &Result{
		CallID:          f.CallID,
		Score:           f.Score,
		ScoreLabel:      f.ScoreLabel,
		Verdicts:        f.Verdicts,
		Positives:       f.Positives,
		Opportunities:   f.Opportunities,
		AlreadyAnalyzed: alreadyAnalyzed,
		CreatedAt:       f.CreatedAt,
	}
}
