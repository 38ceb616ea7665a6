package verdict

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kestrelvoice/callaudit/internal/rubric"
)

func testRubric(name, criteria string) rubric.Rubric {
	return rubric.Rubric{
		ID:       uuid.New(),
		Name:     name,
		Criteria: criteria,
		Active:   true,
	}
}

func TestNormalize_ThresholdOverride(t *testing.T) {
	r := testRubric("Discovery", "The agent must cover at least 3 of 4 topics.")
	raw := `{"evaluation":"compliant","comments":"met only 2 of the 4 required items"}`

	v := Normalize(r, raw)

	if v.Evaluation != NonCompliant {
		t.Errorf("expected non-compliant after override, got %q", v.Evaluation)
	}
	if !v.Corrected {
		t.Error("expected verdict to be marked corrected")
	}
	if v.Comments != "met only 2 of the 4 required items" {
		t.Errorf("comment must be preserved verbatim, got %q", v.Comments)
	}
	if v.RubricID != r.ID {
		t.Errorf("expected rubric id %s, got %s", r.ID, v.RubricID)
	}
}

func TestNormalize_ThresholdMet_NoOverride(t *testing.T) {
	r := testRubric("Discovery", "The agent must cover at least 3 of 4 topics.")
	raw := `{"evaluation":"compliant","comments":"The agent covered only 3 of 4 topics, which satisfies the minimum."}`

	v := Normalize(r, raw)

	if v.Evaluation != Compliant {
		t.Errorf("expected compliant when threshold is met, got %q", v.Evaluation)
	}
	if v.Corrected {
		t.Error("verdict should not be marked corrected")
	}
}

func TestNormalize_PartialWithoutThreshold_NoOverride(t *testing.T) {
	// No minimum in the criteria, so a partial-count phrase alone is not a
	// contradiction.
	r := testRubric("Closing", "The agent must close the call politely.")
	raw := `{"evaluation":"compliant","comments":"The agent used only 1 of several possible closings, which is fine."}`

	v := Normalize(r, raw)

	if v.Evaluation != Compliant {
		t.Errorf("expected compliant, got %q", v.Evaluation)
	}
}

func TestNormalize_NegationMarkers(t *testing.T) {
	tests := []struct {
		name    string
		comment string
	}{
		{"was not identified", "The client's account was not identified during the call."},
		{"did not ask", "The agent did not ask for a callback number."},
		{"did not verify", "The agent did not verify the client's identity."},
		{"did not offer", "The agent did not offer an alternative product."},
		{"failed to", "The agent failed to summarize next steps."},
	}

	r := testRubric("Verification", "The agent must verify the client's identity.")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"evaluation":"compliant","comments":"` + tt.comment + `"}`
			v := Normalize(r, raw)
			if v.Evaluation != NonCompliant {
				t.Errorf("expected override to non-compliant for %q", tt.comment)
			}
			if v.Comments != tt.comment {
				t.Errorf("comment must be preserved verbatim, got %q", v.Comments)
			}
		})
	}
}

func TestNormalize_NoDowngradeEscalation(t *testing.T) {
	// A model-asserted non-compliant must never be escalated to compliant,
	// whatever the comment says.
	r := testRubric("Greeting", "The agent must greet the client.")
	comments := []string{
		"The agent delivered a perfect greeting.",
		"Everything was excellent and all criteria were met.",
		"",
	}

	for _, c := range comments {
		raw := `{"evaluation":"non-compliant","comments":"` + c + `"}`
		v := Normalize(r, raw)
		if v.Evaluation != NonCompliant {
			t.Errorf("non-compliant escalated to %q for comment %q", v.Evaluation, c)
		}
	}
}

func TestNormalize_ParseFailureFallback(t *testing.T) {
	r := testRubric("Greeting", "The agent must greet the client.")

	v := Normalize(r, "I cannot evaluate this.")

	if v.Evaluation != NonCompliant {
		t.Errorf("expected non-compliant fallback, got %q", v.Evaluation)
	}
	if !strings.Contains(v.Comments, "could not be parsed") {
		t.Errorf("expected parse failure message, got %q", v.Comments)
	}
	if v.RubricName != "Greeting" {
		t.Errorf("expected rubric name on fallback, got %q", v.RubricName)
	}
}

func TestNormalize_DiscoveryScenario(t *testing.T) {
	// The model asserts compliance while its own justification reports 1 of
	// 5 questions against a minimum of 3.
	r := testRubric("Discovery", "The agent must ask at least 3 of 5 discovery questions.")
	raw := `{"evaluation":"compliant","comments":"The agent asked only 1 of 5 discovery questions."}`

	v := Normalize(r, raw)

	if v.Evaluation != NonCompliant {
		t.Fatalf("expected non-compliant, got %q", v.Evaluation)
	}
	if v.Comments != "The agent asked only 1 of 5 discovery questions." {
		t.Errorf("comment must be preserved verbatim, got %q", v.Comments)
	}
}

func TestCriteriaMinimum(t *testing.T) {
	tests := []struct {
		name     string
		criteria string
		want     int
		ok       bool
	}{
		{"at least", "must ask at least 3 of 5 questions", 3, true},
		{"minimum", "a minimum 2 follow-ups are required", 2, true},
		{"minimum of", "a minimum of 4 checks", 4, true},
		{"n of m", "complete 3 of 4 verification steps", 3, true},
		{"n out of m", "complete 2 out of 3 steps", 2, true},
		{"no threshold", "greet the client warmly", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := criteriaMinimum(tt.criteria)
			if ok != tt.ok || got != tt.want {
				t.Errorf("criteriaMinimum(%q) = %d, %v; want %d, %v", tt.criteria, got, ok, tt.want, tt.ok)
			}
		})
	}
}
