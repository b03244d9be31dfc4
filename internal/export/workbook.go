// Package export renders a structured extraction as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"contractapi/internal/model"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SheetSummary   = "Summary"
	SheetTimeline  = "Timeline"
	SheetTasks     = "Tasks"
	SheetDeadlines = "Deadlines"
	SheetQA        = "Q&A"
	SheetDates     = "Dates & Deadlines"

	// excelize rejects sheet names longer than this.
	maxSheetName = 31
)

type sheetWriter struct {
	f      *excelize.File
	header int
}

// WriteWorkbook writes r to w. Every section gets a sheet even when empty so
// the layout is stable across documents.
func WriteWorkbook(w io.Writer, r model.StructuredResult) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}
	sw := &sheetWriter{f: f, header: header}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("xlsx rename: %w", err)
	}
	if err := sw.fill(SheetSummary, []string{"Summary"}, [][]any{{r.Summary}}); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 100)

	timeline := make([][]any, 0, len(r.Timeline))
	for _, m := range r.Timeline {
		timeline = append(timeline, []any{m.Milestone, m.Date, m.Description, pageCell(m.Page)})
	}
	if err := sw.add(SheetTimeline, []string{"Milestone", "Date", "Description", "Page"}, timeline); err != nil {
		return err
	}

	tasks := make([][]any, 0, len(r.Tasks))
	for i, t := range r.Tasks {
		id := int(t.ID)
		if id == 0 {
			id = i + 1
		}
		tasks = append(tasks, []any{id, t.Title, t.DueDate, t.RelatedTo, t.Priority})
	}
	if err := sw.add(SheetTasks, []string{"ID", "Title", "Due Date", "Related To", "Priority"}, tasks); err != nil {
		return err
	}

	deadlines := make([][]any, 0, len(r.Deadlines))
	for _, d := range r.Deadlines {
		deadlines = append(deadlines, []any{d.Name, d.Deadline, d.RelatedTask, pageCell(d.Page)})
	}
	if err := sw.add(SheetDeadlines, []string{"Name", "Deadline", "Related Task", "Page"}, deadlines); err != nil {
		return err
	}

	qa := make([][]any, 0, len(r.Accordion))
	for _, q := range r.Accordion {
		qa = append(qa, []any{q.Question, q.Answer, pageCell(q.Page)})
	}
	if err := sw.add(SheetQA, []string{"Question", "Answer", "Page"}, qa); err != nil {
		return err
	}

	used := map[string]struct{}{}
	for _, name := range f.GetSheetList() {
		used[name] = struct{}{}
	}
	for i, t := range r.Tables {
		name := TableSheetName(i, t.Title, used)
		used[name] = struct{}{}

		rows := make([][]any, 0, len(t.Rows))
		for _, row := range t.Rows {
			cells := make([]any, len(row))
			for j, c := range row {
				cells[j] = c
			}
			rows = append(rows, cells)
		}
		if err := sw.add(name, t.Headers, rows); err != nil {
			return err
		}
	}

	dates := make([][]any, 0, len(r.PropertyDetails.DatesAndDeadlines))
	for _, e := range r.PropertyDetails.DatesAndDeadlines {
		dates = append(dates, []any{int(e.ItemNo), e.Reference, e.Event, e.Deadline})
	}
	if err := sw.add(SheetDates, []string{"Item", "Reference", "Event", "Deadline"}, dates); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func (sw *sheetWriter) add(sheet string, headers []string, rows [][]any) error {
	if _, err := sw.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("xlsx sheet %q: %w", sheet, err)
	}
	return sw.fill(sheet, headers, rows)
}

func (sw *sheetWriter) fill(sheet string, headers []string, rows [][]any) error {
	if len(headers) > 0 {
		hdr := make([]any, len(headers))
		for i, h := range headers {
			hdr[i] = h
		}
		if err := sw.f.SetSheetRow(sheet, "A1", &hdr); err != nil {
			return fmt.Errorf("xlsx header %q: %w", sheet, err)
		}
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = sw.f.SetCellStyle(sheet, "A1", last, sw.header)
		lastCol, _ := excelize.ColumnNumberToName(len(headers))
		_ = sw.f.SetColWidth(sheet, "A", lastCol, 24)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %q: %w", sheet, err)
		}
	}
	return nil
}

// TableSheetName derives a unique, excel-safe sheet name for the i-th table.
func TableSheetName(i int, title string, used map[string]struct{}) string {
	title = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		return r
	}, strings.TrimSpace(title))
	title = strings.Trim(strings.Join(strings.Fields(title), " "), "'")

	base := fmt.Sprintf("Table %d", i+1)
	if title != "" {
		base = fmt.Sprintf("T%d %s", i+1, title)
	}
	name := clip(base, maxSheetName)

	for n := 2; ; n++ {
		if _, taken := used[name]; !taken {
			return name
		}
		suffix := fmt.Sprintf(" (%d)", n)
		name = clip(base, maxSheetName-len(suffix)) + suffix
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func pageCell(p model.Page) any {
	if p <= 0 {
		return ""
	}
	return int(p)
}
