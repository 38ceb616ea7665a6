// Package notify posts low-score alerts to an operator-configured webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

func NewWebhook(url string, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type lowScoreAlert struct {
	Event         string    `json:"event"`
	CallID        string    `json:"call_id"`
	Score         int       `json:"score"`
	ScoreLabel    string    `json:"score_label"`
	Opportunities []string  `json:"opportunities"`
	Timestamp     time.Time `json:"timestamp"`
}

// PostLowScoreAlert notifies the webhook that a call scored below the
// configured threshold.
func (w *Webhook) PostLowScoreAlert(ctx context.Context, callID uuid.UUID, score int, label string, opportunities []string) error {
	body, err := json.Marshal(lowScoreAlert{
		Event:         "low_score",
		CallID:        callID.String(),
		Score:         score,
		ScoreLabel:    label,
		Opportunities: opportunities,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}

	w.logger.Info("posted low-score alert", "call_id", callID, "score", score)
	return nil
}
