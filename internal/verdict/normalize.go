package verdict

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kestrelvoice/callaudit/internal/rubric"
)

// The model is observed to sometimes assert compliance while its own
// justification describes failure. These markers flag that case so the
// verdict can be overridden. The list is English-only, matching the
// language calls are evaluated in.
var negationMarkers = []string{
	"was not identified",
	"were not identified",
	"not identified",
	"did not ask",
	"did not verify",
	"did not offer",
	"did not mention",
	"did not confirm",
	"did not greet",
	"failed to",
	"was not performed",
	"was not completed",
}

var (
	partialMetRe = regexp.MustCompile(`(?i)\bonly\s+(\d+)\s+of\b`)

	// Threshold phrasings in rubric criteria, checked in order.
	atLeastRe = regexp.MustCompile(`(?i)\bat least\s+(\d+)\b`)
	minimumRe = regexp.MustCompile(`(?i)\bminimum(?:\s+of)?\s+(\d+)\b`)
	nOfMRe    = regexp.MustCompile(`(?i)\b(\d+)\s+(?:out\s+)?of\s+\d+\b`)
)

// Normalize parses a raw model response for one rubric and applies the
// consistency audit. Parse failures degrade to the deterministic fallback.
// The original comment is preserved verbatim so a correction stays auditable.
func Normalize(r rubric.Rubric, raw string) Verdict {
	res := Parse(raw)
	if !res.Parsed {
		return Fallback(r, "The model response could not be parsed: "+res.Reason+".")
	}

	v := Verdict{
		RubricID:   r.ID,
		RubricName: r.Name,
		Evaluation: Evaluation(res.Verdict.Evaluation),
		Comments:   res.Verdict.Comments,
	}

	// One-directional: a model-asserted non-compliant is never escalated.
	if v.Evaluation == Compliant && contradicts(r.Criteria, v.Comments) {
		v.Evaluation = NonCompliant
		v.Corrected = true
	}
	return v
}

// contradicts reports whether the comment's language undermines a
// "compliant" evaluation: either an explicit negation, or a reported
// sub-criteria count below the minimum the rubric's criteria demand.
func contradicts(criteria, comment string) bool {
	lower := strings.ToLower(comment)
	for _, marker := range negationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	m := partialMetRe.FindStringSubmatch(comment)
	if m == nil {
		return false
	}
	met, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	min, ok := criteriaMinimum(criteria)
	return ok && met < min
}

// criteriaMinimum extracts the minimum sub-criteria count from rubric
// criteria text, e.g. "at least 3 of 5", "minimum 3", "3 of 4".
func criteriaMinimum(criteria string) (int, bool) {
	for _, re := range []*regexp.Regexp{atLeastRe, minimumRe, nOfMRe} {
		if m := re.FindStringSubmatch(criteria); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}
