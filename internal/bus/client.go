// Package bus is the NATS boundary: call-lifecycle events in, feedback
// events out.
package bus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectRecordingStored fires when a call recording lands in storage.
	SubjectRecordingStored = "calls.recording.stored"
	// SubjectTranscriptStored fires when a call's transcript is available.
	SubjectTranscriptStored = "calls.transcript.stored"
	// SubjectFeedbackCreated fires once per call when feedback is generated.
	SubjectFeedbackCreated = "calls.feedback.created"
)

// RecordingStoredEvent announces a new recording to transcribe.
type RecordingStoredEvent struct {
	CallID string `json:"call_id"`
	Path   string `json:"path"`
}

// TranscriptStoredEvent triggers compliance analysis for a call.
type TranscriptStoredEvent struct {
	CallID string `json:"call_id"`
}

// FeedbackCreatedEvent is published exactly once per call, after the
// feedback row is committed.
type FeedbackCreatedEvent struct {
	CallID     string `json:"call_id"`
	Score      int    `json:"score"`
	ScoreLabel string `json:"score_label"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
