// Package scoring aggregates normalized verdicts into the per-call
// compliance score and its qualitative label.
package scoring

import (
	"math"

	"github.com/kestrelvoice/callaudit/internal/verdict"
)

// Score returns round(100 * compliant / total). All rubrics weigh equally.
// An empty verdict list scores 0; the analyzer refuses to run without active
// rubrics, so this is a guard, not an expected path.
func Score(verdicts []verdict.Verdict) int {
	if len(verdicts) == 0 {
		return 0
	}
	compliant := 0
	for _, v := range verdicts {
		if v.Evaluation == verdict.Compliant {
			compliant++
		}
	}
	return int(math.Round(100 * float64(compliant) / float64(len(verdicts))))
}

// Label maps a score to its qualitative band.
func Label(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Very good"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Fair"
	case score >= 50:
		return "Needs improvement"
	default:
		return "Critical"
	}
}
