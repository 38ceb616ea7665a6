// Package evaluator runs one rubric at a time against a call transcript
// through the language model and returns normalized verdicts.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kestrelvoice/callaudit/internal/rubric"
	"github.com/kestrelvoice/callaudit/internal/verdict"
)

const maxResponseTokens = 1024

const fallbackComment = "The analysis could not be completed for this behavior."

// Completer is the language-model boundary.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

type Evaluator struct {
	llm     Completer
	timeout time.Duration
	retries int
	logger  *slog.Logger
}

func New(llm Completer, timeout time.Duration, retries int, logger *slog.Logger) *Evaluator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if retries < 0 {
		retries = 0
	}
	return &Evaluator{llm: llm, timeout: timeout, retries: retries, logger: logger}
}

// Evaluate runs one rubric against the transcript and returns the
// normalized verdict. A model failure after retries degrades to the
// fallback verdict; one rubric's failure never aborts the batch.
func (e *Evaluator) Evaluate(ctx context.Context, r rubric.Rubric, transcript string) verdict.Verdict {
	raw, err := e.complete(ctx, r, transcript)
	if err != nil {
		e.logger.Warn("rubric evaluation failed",
			"rubric", r.Name,
			"rubric_id", r.ID,
			"error", err,
		)
		return verdict.Fallback(r, fallbackComment)
	}
	v := verdict.Normalize(r, raw)
	if v.Corrected {
		e.logger.Info("verdict corrected by consistency audit",
			"rubric", r.Name,
			"comments", v.Comments,
		)
	}
	return v
}

func (e *Evaluator) complete(ctx context.Context, r rubric.Rubric, transcript string) (string, error) {
	user := fmt.Sprintf(evaluationUserPrompt, r.Name, r.Description, r.Criteria, transcript)

	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		raw, err := e.llm.Complete(callCtx, systemPrompt, user, maxResponseTokens)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}
