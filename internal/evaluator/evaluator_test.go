package evaluator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/rubric"
	"github.com/kestrelvoice/callaudit/internal/verdict"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCompleter struct {
	responses []string
	errs      []error
	calls     int
	lastUser  string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	i := f.calls
	f.calls++
	f.lastUser = user
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func testRubric() rubric.Rubric {
	return rubric.Rubric{
		ID:          uuid.New(),
		Name:        "Discovery",
		Description: "Probes the client's needs",
		Criteria:    "The agent must ask at least 3 of 5 discovery questions.",
		Active:      true,
	}
}

func TestEvaluate_Success(t *testing.T) {
	llm := &fakeCompleter{
		responses: []string{`{"evaluation":"compliant","comments":"Asked 4 of 5 questions."}`},
	}
	e := New(llm, time.Second, 1, discardLogger())

	v := e.Evaluate(context.Background(), testRubric(), "Agent: hello\nClient: hi")

	if v.Evaluation != verdict.Compliant {
		t.Errorf("expected compliant, got %q", v.Evaluation)
	}
	if llm.calls != 1 {
		t.Errorf("expected 1 model call, got %d", llm.calls)
	}
}

func TestEvaluate_PromptContents(t *testing.T) {
	llm := &fakeCompleter{
		responses: []string{`{"evaluation":"compliant","comments":"ok"}`},
	}
	e := New(llm, time.Second, 0, discardLogger())
	r := testRubric()

	e.Evaluate(context.Background(), r, "Agent: full transcript here")

	for _, want := range []string{r.Name, r.Description, r.Criteria, "Agent: full transcript here"} {
		if !strings.Contains(llm.lastUser, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestEvaluate_RetryThenSuccess(t *testing.T) {
	llm := &fakeCompleter{
		errs:      []error{errors.New("transient"), nil},
		responses: []string{"", `{"evaluation":"non-compliant","comments":"No questions asked."}`},
	}
	e := New(llm, time.Second, 1, discardLogger())

	v := e.Evaluate(context.Background(), testRubric(), "transcript")

	if llm.calls != 2 {
		t.Fatalf("expected 2 model calls, got %d", llm.calls)
	}
	if v.Evaluation != verdict.NonCompliant {
		t.Errorf("expected non-compliant, got %q", v.Evaluation)
	}
	if v.Comments != "No questions asked." {
		t.Errorf("unexpected comments %q", v.Comments)
	}
}

func TestEvaluate_ExhaustionFallback(t *testing.T) {
	llm := &fakeCompleter{
		errs: []error{errors.New("down"), errors.New("still down")},
	}
	e := New(llm, time.Second, 1, discardLogger())
	r := testRubric()

	v := e.Evaluate(context.Background(), r, "transcript")

	if llm.calls != 2 {
		t.Fatalf("expected 2 model calls, got %d", llm.calls)
	}
	if v.Evaluation != verdict.NonCompliant {
		t.Errorf("expected fallback non-compliant, got %q", v.Evaluation)
	}
	if !strings.Contains(v.Comments, "could not be completed") {
		t.Errorf("expected fallback comment, got %q", v.Comments)
	}
	if v.RubricID != r.ID {
		t.Errorf("fallback verdict must carry the rubric id")
	}
}

func TestEvaluate_ContradictionCorrected(t *testing.T) {
	llm := &fakeCompleter{
		responses: []string{`{"evaluation":"compliant","comments":"The agent asked only 1 of 5 discovery questions."}`},
	}
	e := New(llm, time.Second, 0, discardLogger())

	v := e.Evaluate(context.Background(), testRubric(), "transcript")

	if v.Evaluation != verdict.NonCompliant {
		t.Errorf("expected corrected non-compliant, got %q", v.Evaluation)
	}
	if !v.Corrected {
		t.Error("expected corrected flag")
	}
}

func TestEvaluate_CancelledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &fakeCompleter{
		errs: []error{context.Canceled, context.Canceled, context.Canceled},
	}
	e := New(llm, time.Second, 2, discardLogger())

	v := e.Evaluate(ctx, testRubric(), "transcript")

	if llm.calls != 1 {
		t.Errorf("expected 1 model call after cancellation, got %d", llm.calls)
	}
	if v.Evaluation != verdict.NonCompliant {
		t.Errorf("expected fallback verdict, got %q", v.Evaluation)
	}
}
