package extraction

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RecoveryStage records which step of RecoverJSON produced the object.
type RecoveryStage string

const (
	StageDirect   RecoveryStage = "direct"
	StageCleaned  RecoveryStage = "cleaned"
	StageFallback RecoveryStage = "fallback"
)

// FallbackSummary is the summary used when no JSON object could be recovered.
const FallbackSummary = "Failed to parse document structure. Please try again."

var (
	reFenceOpenJSON = regexp.MustCompile("(?im)^```json\\s*")
	reFenceOpen     = regexp.MustCompile("(?im)^```\\s*")
	reFenceClose    = regexp.MustCompile("(?im)```\\s*$")
)

// RecoverJSON extracts a JSON object from a model response. It tries a direct
// parse, then strips markdown fences and parses the outermost {...} span, and
// finally falls back to an empty object. It never fails.
func RecoverJSON(text string) (map[string]any, RecoveryStage) {
	if obj, ok := parseObject(text); ok {
		return obj, StageDirect
	}

	cleaned := strings.TrimSpace(text)
	cleaned = reFenceOpenJSON.ReplaceAllString(cleaned, "")
	cleaned = reFenceOpen.ReplaceAllString(cleaned, "")
	cleaned = reFenceClose.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end > start {
		cleaned = cleaned[start : end+1]
	}

	if obj, ok := parseObject(cleaned); ok {
		return obj, StageCleaned
	}
	return FallbackObject(FallbackSummary), StageFallback
}

// FallbackObject is the loosely typed shape with every section empty.
func FallbackObject(summary string) map[string]any {
	return map[string]any{
		"accordion": []any{},
		"tables":    []any{},
		"timeline":  []any{},
		"summary":   summary,
		"tasks":     []any{},
		"deadlines": []any{},
		"propertyDetails": map[string]any{
			"datesAndDeadlines": []any{},
		},
	}
}

// parseObject succeeds only for a JSON object; arrays and scalars are rejected.
func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
