package feedback

import (
	"testing"

	"github.com/kestrelvoice/callaudit/internal/verdict"
)

func v(name string, eval verdict.Evaluation) verdict.Verdict {
	return verdict.Verdict{RubricName: name, Evaluation: eval}
}

func TestPositives_KeywordMatch(t *testing.T) {
	out := Positives([]verdict.Verdict{
		v("Greeting", verdict.Compliant),
		v("Identity Verification", verdict.Compliant),
	})

	if len(out) != 2 {
		t.Fatalf("expected 2 positives, got %d: %v", len(out), out)
	}
	if out[0] != "Delivered a warm, professional greeting" {
		t.Errorf("unexpected greeting positive %q", out[0])
	}
	if out[1] != "Verified the client's identity correctly" {
		t.Errorf("unexpected verification positive %q", out[1])
	}
}

func TestPositives_GenericForUnknownRubric(t *testing.T) {
	out := Positives([]verdict.Verdict{v("Documentation", verdict.Compliant)})

	if len(out) != 1 || out[0] != "Met: Documentation" {
		t.Errorf("expected generic met line, got %v", out)
	}
}

func TestPositives_FallbackNeverEmpty(t *testing.T) {
	out := Positives([]verdict.Verdict{
		v("Greeting", verdict.NonCompliant),
		v("Discovery", verdict.NonCompliant),
	})

	if len(out) == 0 {
		t.Fatal("positives must never be empty")
	}
	for _, p := range out {
		if p == "" {
			t.Error("empty positive entry")
		}
	}
}

func TestPositives_Bounded(t *testing.T) {
	var vs []verdict.Verdict
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for _, n := range names {
		vs = append(vs, v(n, verdict.Compliant))
	}

	out := Positives(vs)
	if len(out) > 5 {
		t.Errorf("expected at most 5 positives, got %d", len(out))
	}
}

func TestOpportunities_DiscoveryKeyword(t *testing.T) {
	out := Opportunities([]verdict.Verdict{v("Discovery", verdict.NonCompliant)})

	if len(out) != 1 || out[0] != "Implement questions to probe needs" {
		t.Errorf("expected discovery opportunity, got %v", out)
	}
}

func TestOpportunities_AllCompliantSentinel(t *testing.T) {
	out := Opportunities([]verdict.Verdict{
		v("Greeting", verdict.Compliant),
		v("Discovery", verdict.Compliant),
	})

	if len(out) != 1 || out[0] != NoOpportunities {
		t.Errorf("expected sentinel, got %v", out)
	}
}

func TestOpportunities_UnknownRubric(t *testing.T) {
	out := Opportunities([]verdict.Verdict{v("Documentation", verdict.NonCompliant)})

	if len(out) != 1 || out[0] != "Review expectations for: Documentation" {
		t.Errorf("expected generic review line, got %v", out)
	}
}

func TestOpportunities_Deduplicated(t *testing.T) {
	// Two rubrics matching the same keyword rule produce one suggestion.
	out := Opportunities([]verdict.Verdict{
		v("Discovery Questions", verdict.NonCompliant),
		v("Needs Discovery", verdict.NonCompliant),
	})

	if len(out) != 1 {
		t.Errorf("expected deduplicated list, got %v", out)
	}
}
