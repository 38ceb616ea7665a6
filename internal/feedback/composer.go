// Package feedback derives the narrative positive and opportunity lists
// from a call's normalized verdicts. Keyword matching over rubric names is
// deliberately local and deterministic; no extra model calls.
package feedback

import (
	"strings"

	"github.com/kestrelvoice/callaudit/internal/verdict"
)

const maxPositives = 5
const maxOpportunities = 5

// NoOpportunities is the sentinel returned when every verdict is compliant.
const NoOpportunities = "No significant improvement opportunities identified"

type keywordRule struct {
	keywords    []string
	positive    string
	opportunity string
}

var rules = []keywordRule{
	{
		keywords:    []string{"greeting", "welcome"},
		positive:    "Delivered a warm, professional greeting",
		opportunity: "Open every call with the standard greeting",
	},
	{
		keywords:    []string{"discovery", "ask", "question"},
		positive:    "Asked the required discovery questions",
		opportunity: "Implement questions to probe needs",
	},
	{
		keywords:    []string{"identity", "verify", "verification"},
		positive:    "Verified the client's identity correctly",
		opportunity: "Verify the client's identity before discussing the account",
	},
	{
		keywords:    []string{"offer", "solution", "product"},
		positive:    "Offered a relevant solution to the client",
		opportunity: "Present a concrete solution or product offer",
	},
	{
		keywords:    []string{"closing", "farewell", "close"},
		positive:    "Closed the call according to protocol",
		opportunity: "Close the call with a clear summary and next steps",
	},
	{
		keywords:    []string{"empathy", "tone"},
		positive:    "Maintained an empathetic tone",
		opportunity: "Acknowledge the client's situation before moving to process",
	},
	{
		keywords:    []string{"hold", "wait"},
		positive:    "Managed hold times correctly",
		opportunity: "Announce and time-box any hold placed on the client",
	},
}

var genericPositives = []string{
	"Maintained a professional tone throughout the call",
	"Kept the conversation focused on the client's request",
}

// Positives derives affirmations from compliant verdicts. The result is
// never empty: when nothing is compliant the generic fallback applies.
func Positives(verdicts []verdict.Verdict) []string {
	var out []string
	seen := map[string]bool{}
	for _, v := range verdicts {
		if v.Evaluation != verdict.Compliant {
			continue
		}
		if len(out) >= maxPositives {
			break
		}
		text := "Met: " + v.RubricName
		if rule := matchRule(v.RubricName); rule != nil {
			text = rule.positive
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}

	if len(out) == 0 {
		out = make([]string, len(genericPositives))
		copy(out, genericPositives)
	}
	return out
}

// Opportunities derives actionable suggestions from non-compliant verdicts,
// or the NoOpportunities sentinel when every verdict is compliant.
func Opportunities(verdicts []verdict.Verdict) []string {
	var out []string
	seen := map[string]bool{}
	for _, v := range verdicts {
		if v.Evaluation != verdict.NonCompliant {
			continue
		}
		if len(out) >= maxOpportunities {
			break
		}
		text := "Review expectations for: " + v.RubricName
		if rule := matchRule(v.RubricName); rule != nil {
			text = rule.opportunity
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}

	if len(out) == 0 {
		return []string{NoOpportunities}
	}
	return out
}

func matchRule(rubricName string) *keywordRule {
	lower := strings.ToLower(rubricName)
	for i := range rules {
		for _, kw := range rules[i].keywords {
			if strings.Contains(lower, kw) {
				return &rules[i]
			}
		}
	}
	return nil
}
