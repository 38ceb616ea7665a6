// Package verdict turns raw model responses into normalized per-rubric
// verdicts, including the consistency audit that corrects the model when
// its own justification contradicts its stated evaluation.
package verdict

import (
	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/rubric"
)

type Evaluation string

const (
	Compliant    Evaluation = "compliant"
	NonCompliant Evaluation = "non-compliant"
)

// Verdict is the outcome of evaluating one rubric against one call.
// Verdicts reference rubrics by stable ID; the name is carried for display.
type Verdict struct {
	RubricID   uuid.UUID  `json:"rubric_id"`
	RubricName string     `json:"rubric_name"`
	Evaluation Evaluation `json:"evaluation"`
	Comments   string     `json:"comments"`
	Corrected  bool       `json:"corrected,omitempty"`
}

// Fallback builds the deterministic non-compliant verdict used when an
// evaluation cannot produce a usable model response.
func Fallback(r rubric.Rubric, comment string) Verdict {
	return Verdict{
		RubricID:   r.ID,
		RubricName: r.Name,
		Evaluation: NonCompliant,
		Comments:   comment,
	}
}
