package trends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/store"
)

type fakeCounts struct {
	counts []store.RubricFailureCount
	err    error
}

func (f *fakeCounts) RubricFailureCounts(ctx context.Context, since *time.Time) ([]store.RubricFailureCount, error) {
	return f.counts, f.err
}

func TestFindSlippingRubrics(t *testing.T) {
	greeting := uuid.New()
	discovery := uuid.New()
	closing := uuid.New()

	d := NewDetector(&fakeCounts{counts: []store.RubricFailureCount{
		{RubricID: discovery, RubricName: "Discovery", Total: 10, Failed: 8},
		{RubricID: greeting, RubricName: "Greeting", Total: 10, Failed: 2},
		{RubricID: closing, RubricName: "Closing", Total: 2, Failed: 2},
	}})

	trends, err := d.FindSlippingRubrics(context.Background(), nil, 0.5, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(trends) != 1 {
		t.Fatalf("expected 1 slipping rubric, got %d: %+v", len(trends), trends)
	}
	if trends[0].RubricID != discovery {
		t.Errorf("expected discovery rubric, got %s", trends[0].RubricName)
	}
	if trends[0].FailureRate != 0.8 {
		t.Errorf("expected failure rate 0.8, got %f", trends[0].FailureRate)
	}
}

func TestFindSlippingRubrics_DefaultsOnBadParams(t *testing.T) {
	d := NewDetector(&fakeCounts{counts: []store.RubricFailureCount{
		{RubricID: uuid.New(), RubricName: "Discovery", Total: 4, Failed: 2},
	}})

	// minRate out of range falls back to 0.5; minCalls < 1 falls back to 1.
	trends, err := d.FindSlippingRubrics(context.Background(), nil, -1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trends) != 1 {
		t.Errorf("expected 1 trend with defaulted params, got %d", len(trends))
	}
}

func TestFindSlippingRubrics_SourceError(t *testing.T) {
	d := NewDetector(&fakeCounts{err: errors.New("db down")})

	if _, err := d.FindSlippingRubrics(context.Background(), nil, 0.5, 1); err == nil {
		t.Fatal("expected error from count source")
	}
}
