package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// StructuredResult is the normalized contract extraction returned to callers.
// Every section is always present; empty sections are empty slices, never null.
type StructuredResult struct {
	Accordion       []QA            `json:"accordion"`
	Tables          []Table         `json:"tables"`
	Timeline        []Milestone     `json:"timeline"`
	Summary         string          `json:"summary"`
	Tasks           []Task          `json:"tasks"`
	Deadlines       []Deadline      `json:"deadlines"`
	PropertyDetails PropertyDetails `json:"propertyDetails"`
}

// QA is a question/answer pair rendered as an accordion entry.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Page     Page   `json:"page"`
}

// Table is a tabular block lifted from the contract.
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Page    Page       `json:"page"`
}

// Milestone is a chronological event. Date is YYYY-MM-DD or DateTBD.
type Milestone struct {
	Milestone   string `json:"milestone"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Page        Page   `json:"page"`
}

// Task is an actionable item derived from the contract.
type Task struct {
	ID        Seq    `json:"id,omitempty"`
	Title     string `json:"title"`
	DueDate   string `json:"dueDate"`
	RelatedTo string `json:"relatedTo"`
	Priority  string `json:"priority,omitempty"`
}

// Deadline is a time-bound obligation; each one should have a matching task.
type Deadline struct {
	Name        string `json:"name"`
	Deadline    string `json:"deadline"`
	RelatedTask string `json:"relatedTask"`
	Page        Page   `json:"page"`
}

// PropertyDetails holds the item-numbered dates and deadlines table.
type PropertyDetails struct {
	DatesAndDeadlines []DateEntry `json:"datesAndDeadlines"`
}

// DateEntry is one row of the dates and deadlines table.
type DateEntry struct {
	ItemNo    Seq    `json:"itemNo"`
	Reference string `json:"reference"`
	Event     string `json:"event"`
	Deadline  string `json:"deadline"`
}

const (
	// DateTBD marks a date that is blank, missing or a placeholder in the source.
	DateTBD = "TBD"

	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Page is a 1-based page reference. Models return it as a number, a numeric
// string or not at all; anything unparseable decodes to 0 (unknown).
type Page int

// UnmarshalJSON accepts numbers, numeric strings and null.
func (p *Page) UnmarshalJSON(b []byte) error {
	n, err := lenientInt(b)
	*p = Page(n)
	return err
}

// Seq is a sequence number (task id, item number) decoded as leniently as Page.
type Seq int

// UnmarshalJSON accepts numbers, numeric strings and null.
func (s *Seq) UnmarshalJSON(b []byte) error {
	n, err := lenientInt(b)
	*s = Seq(n)
	return err
}

func lenientInt(b []byte) (int, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, err
		}
		return parseIntText(s), nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil || f < 0 || f > maxLenientInt || f != math.Trunc(f) {
		return 0, nil
	}
	return int(f), nil
}

// Page numbers and sequence numbers beyond this are treated as garbage.
const maxLenientInt = math.MaxInt32

func parseIntText(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"page", "p.", "#"} {
		s = strings.TrimPrefix(s, prefix)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > maxLenientInt {
		return 0
	}
	return n
}
