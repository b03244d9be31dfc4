package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"

	"contractapi/internal/model"
)

// Decode converts a recovered JSON object into a typed result. Sections with
// the wrong container type are treated as missing and items that do not fit
// their record are dropped; each drop is reported in the returned warnings.
// The result still needs Normalize before it leaves the package boundary.
func Decode(obj map[string]any) (model.StructuredResult, []string) {
	var warnings []string
	var out model.StructuredResult

	out.Accordion = decodeItems[model.QA](obj, "accordion", &warnings)
	out.Tables = decodeTables(obj, &warnings)
	out.Timeline = decodeItems[model.Milestone](obj, "timeline", &warnings)
	out.Tasks = decodeItems[model.Task](obj, "tasks", &warnings)
	out.Deadlines = decodeItems[model.Deadline](obj, "deadlines", &warnings)

	if s, ok := obj["summary"].(string); ok {
		out.Summary = s
	} else if v, present := obj["summary"]; present && v != nil {
		warnings = append(warnings, "summary: not a string")
	}

	if pd, ok := obj["propertyDetails"].(map[string]any); ok {
		out.PropertyDetails.DatesAndDeadlines = decodeItems[model.DateEntry](pd, "datesAndDeadlines", &warnings)
	}

	return out, warnings
}

func sectionItems(obj map[string]any, key string, warnings *[]string) []any {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		*warnings = append(*warnings, key+": not an array")
		return nil
	}
	return items
}

func decodeItems[T any](obj map[string]any, key string, warnings *[]string) []T {
	items := sectionItems(obj, key, warnings)
	out := make([]T, 0, len(items))
	for i, item := range items {
		if _, ok := item.(map[string]any); !ok {
			*warnings = append(*warnings, fmt.Sprintf("%s[%d]: not an object", key, i))
			continue
		}
		b, err := json.Marshal(item)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("%s[%d]: %v", key, i, err))
			continue
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			*warnings = append(*warnings, fmt.Sprintf("%s[%d]: %v", key, i, err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeTables is hand-rolled because models routinely emit numeric cells.
func decodeTables(obj map[string]any, warnings *[]string) []model.Table {
	items := sectionItems(obj, "tables", warnings)
	out := make([]model.Table, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("tables[%d]: not an object", i))
			continue
		}
		t := model.Table{
			Title:   cellText(m["title"]),
			Headers: textList(m["headers"]),
		}
		if rows, ok := m["rows"].([]any); ok {
			for _, r := range rows {
				t.Rows = append(t.Rows, textList(r))
			}
		}
		if b, err := json.Marshal(m["page"]); err == nil {
			_ = t.Page.UnmarshalJSON(b)
		}
		out = append(out, t)
	}
	return out
}

func textList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil
		}
		return []string{cellText(v)}
	}
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, cellText(c))
	}
	return out
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
