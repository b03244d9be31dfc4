package extraction

import (
	"strings"
	"time"

	"contractapi/internal/model"
)

// NoSummary is the placeholder used when the model produced no summary.
const NoSummary = "No summary available"

const isoDate = "2006-01-02"

var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Normalize returns r with every section present and every value in canonical
// form: nil sections become empty, strings are trimmed, dates are YYYY-MM-DD or
// TBD and priorities are High, Medium, Low or absent. Normalize is idempotent.
func Normalize(r model.StructuredResult) model.StructuredResult {
	out := model.StructuredResult{
		Accordion: make([]model.QA, 0, len(r.Accordion)),
		Tables:    make([]model.Table, 0, len(r.Tables)),
		Timeline:  make([]model.Milestone, 0, len(r.Timeline)),
		Summary:   strings.TrimSpace(r.Summary),
		Tasks:     make([]model.Task, 0, len(r.Tasks)),
		Deadlines: make([]model.Deadline, 0, len(r.Deadlines)),
		PropertyDetails: model.PropertyDetails{
			DatesAndDeadlines: make([]model.DateEntry, 0, len(r.PropertyDetails.DatesAndDeadlines)),
		},
	}
	if out.Summary == "" {
		out.Summary = NoSummary
	}

	for _, qa := range r.Accordion {
		out.Accordion = append(out.Accordion, model.QA{
			Question: strings.TrimSpace(qa.Question),
			Answer:   strings.TrimSpace(qa.Answer),
			Page:     qa.Page,
		})
	}

	for _, t := range r.Tables {
		nt := model.Table{
			Title:   strings.TrimSpace(t.Title),
			Headers: trimAll(t.Headers),
			Rows:    make([][]string, 0, len(t.Rows)),
			Page:    t.Page,
		}
		for _, row := range t.Rows {
			nt.Rows = append(nt.Rows, trimAll(row))
		}
		out.Tables = append(out.Tables, nt)
	}

	for _, m := range r.Timeline {
		out.Timeline = append(out.Timeline, model.Milestone{
			Milestone:   strings.TrimSpace(m.Milestone),
			Date:        NormalizeDate(m.Date),
			Description: strings.TrimSpace(m.Description),
			Page:        m.Page,
		})
	}

	for _, t := range r.Tasks {
		out.Tasks = append(out.Tasks, model.Task{
			ID:        t.ID,
			Title:     strings.TrimSpace(t.Title),
			DueDate:   NormalizeDate(t.DueDate),
			RelatedTo: strings.TrimSpace(t.RelatedTo),
			Priority:  NormalizePriority(t.Priority),
		})
	}

	for _, d := range r.Deadlines {
		out.Deadlines = append(out.Deadlines, model.Deadline{
			Name:        strings.TrimSpace(d.Name),
			Deadline:    NormalizeDate(d.Deadline),
			RelatedTask: strings.TrimSpace(d.RelatedTask),
			Page:        d.Page,
		})
	}

	for _, e := range r.PropertyDetails.DatesAndDeadlines {
		out.PropertyDetails.DatesAndDeadlines = append(out.PropertyDetails.DatesAndDeadlines, model.DateEntry{
			ItemNo:    e.ItemNo,
			Reference: strings.TrimSpace(e.Reference),
			Event:     strings.TrimSpace(e.Event),
			Deadline:  NormalizeDate(e.Deadline),
		})
	}

	return out
}

// NormalizeDate maps a model-supplied date onto YYYY-MM-DD, or TBD when it is
// blank, a placeholder or in no recognizable layout.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, model.DateTBD) {
		return model.DateTBD
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}
	return model.DateTBD
}

// NormalizePriority canonicalizes the priority casing; unknown values are dropped.
func NormalizePriority(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return model.PriorityHigh
	case "medium":
		return model.PriorityMedium
	case "low":
		return model.PriorityLow
	}
	return ""
}

// Fallback is the normalized empty result carrying the given summary.
func Fallback(summary string) model.StructuredResult {
	return Normalize(model.StructuredResult{Summary: summary})
}

// FailureResult is the shape returned alongside a failed pipeline run.
func FailureResult(message string) model.StructuredResult {
	return Fallback("Error processing document: " + message)
}

// FromResponse runs recovery, decoding and normalization over a raw model response.
func FromResponse(text string) (model.StructuredResult, RecoveryStage, []string) {
	obj, stage := RecoverJSON(text)
	decoded, warnings := Decode(obj)
	return Normalize(decoded), stage, warnings
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}
