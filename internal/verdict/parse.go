package verdict

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RawVerdict is the JSON object the model is instructed to return.
type RawVerdict struct {
	Evaluation string `json:"evaluation"`
	Comments   string `json:"comments"`
}

// ParseResult is the outcome of extracting a RawVerdict from model output:
// either Parsed is true and Verdict is set, or Reason explains the failure.
type ParseResult struct {
	Parsed  bool
	Verdict RawVerdict
	Reason  string
}

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Parse extracts the verdict object from a raw model response. The object
// may appear bare, inside a fenced code block, or surrounded by extra prose.
func Parse(raw string) ParseResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ParseResult{Reason: "empty response"}
	}

	candidate := raw
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else if !strings.HasPrefix(raw, "{") {
		// Fall back to the outermost braces when the model wrapped the
		// object in prose.
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end <= start {
			return ParseResult{Reason: "no JSON object found"}
		}
		candidate = raw[start : end+1]
	}

	var rv RawVerdict
	if err := json.Unmarshal([]byte(candidate), &rv); err != nil {
		return ParseResult{Reason: "invalid JSON object"}
	}

	switch strings.ToLower(strings.TrimSpace(rv.Evaluation)) {
	case string(Compliant):
		rv.Evaluation = string(Compliant)
	case string(NonCompliant), "noncompliant", "non compliant":
		rv.Evaluation = string(NonCompliant)
	case "":
		return ParseResult{Reason: "missing evaluation field"}
	default:
		return ParseResult{Reason: "unrecognized evaluation value"}
	}

	return ParseResult{Parsed: true, Verdict: rv}
}
