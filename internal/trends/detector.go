// Package trends surfaces rubrics whose recent failure rate suggests a
// slipping behavior, for the operator dashboard.
package trends

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/store"
)

const defaultMinRate = 0.5

// RubricTrend is one slipping rubric with its recent failure rate.
type RubricTrend struct {
	RubricID    uuid.UUID `json:"rubric_id"`
	RubricName  string    `json:"rubric_name"`
	Total       int       `json:"total"`
	Failed      int       `json:"failed"`
	FailureRate float64   `json:"failure_rate"`
}

// CountSource provides per-rubric verdict tallies.
type CountSource interface {
	RubricFailureCounts(ctx context.Context, since *time.Time) ([]store.RubricFailureCount, error)
}

type Detector struct {
	counts CountSource
}

func NewDetector(counts CountSource) *Detector {
	return &Detector{counts: counts}
}

// FindSlippingRubrics returns rubrics whose failure rate since the given
// time meets minRate, ignoring rubrics evaluated fewer than minCalls times.
// Results keep the store's ordering: most failures first.
func (d *Detector) FindSlippingRubrics(ctx context.Context, since *time.Time, minRate float64, minCalls int) ([]RubricTrend, error) {
	if minRate <= 0 || minRate > 1 {
		minRate = defaultMinRate
	}
	if minCalls < 1 {
		minCalls = 1
	}

	counts, err := d.counts.RubricFailureCounts(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failure counts: %w", err)
	}

	var trends []RubricTrend
	for _, c := range counts {
		if c.Total < minCalls {
			continue
		}
		rate := float64(c.Failed) / float64(c.Total)
		if rate < minRate {
			continue
		}
		trends = append(trends, RubricTrend{
			RubricID:    c.RubricID,
			RubricName:  c.RubricName,
			Total:       c.Total,
			Failed:      c.Failed,
			FailureRate: rate,
		})
	}
	return trends, nil
}
