// Package report grades a structured extraction section by section.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"contractapi/internal/model"
)

// section is one graded part of the result. Optional sections count as
// partial rather than failed when empty.
type section struct {
	name       string
	count      int
	confidence string
	score      int
	scoreKey   string
	optional   bool
	reason     string
	suggestion string
	missing    string
}

// Build derives the quality report for r. It never fails; an empty result
// produces a report with a zero extraction rate.
func Build(r model.StructuredResult) model.Report {
	sections := []section{
		{
			name: "Property Details", count: len(r.Tables), confidence: "High", score: 90, scoreKey: "propertyDetails",
			reason:     "No structured tables found in document",
			suggestion: "Document may contain unstructured property information",
			missing:    "Property details in tabular format",
		},
		{
			name: "Timeline Events", count: len(r.Timeline), confidence: "High", score: 85, scoreKey: "timeline",
			reason:     "No clear timeline or milestone patterns detected",
			suggestion: "Document may contain dates in non-standard format",
			missing:    "Transaction timeline and key milestones",
		},
		{
			name: "Critical Deadlines", count: len(r.Deadlines), confidence: "High", score: 88, scoreKey: "deadlines",
			reason:     "No explicit deadline language or time constraints found",
			suggestion: "Review document for implicit time requirements",
			missing:    "Time-sensitive deadlines and constraints",
		},
		{
			name: "Action Items", count: len(r.Tasks), confidence: "Medium", score: 75, scoreKey: "tasks", optional: true,
			reason:     "Tasks may be embedded within other sections",
			suggestion: "Review deadlines and timeline for implicit action items",
		},
		{
			name: "Q&A Analysis", count: len(r.Accordion), confidence: "Medium", score: 65, scoreKey: "qaAnalysis", optional: true,
			reason:     "Document structure not conducive to Q&A extraction",
			suggestion: "Information may be better represented in other formats",
		},
	}

	rep := model.Report{
		TotalSections:    len(sections),
		Findings:         make([]model.Finding, 0, len(sections)),
		Challenges:       []string{},
		Recommendations:  []string{},
		ConfidenceScores: make(map[string]int, len(sections)+1),
		Warnings:         []string{},
	}

	var failed, missingCritical int
	for _, s := range sections {
		f := model.Finding{Section: s.name, Count: s.count}
		switch {
		case s.count > 0:
			f.Found = true
			f.Confidence = s.confidence
			rep.SuccessfulSections++
			rep.ConfidenceScores[s.scoreKey] = s.score
		case s.optional:
			f.Partial = true
			f.Reason, f.Suggestion = s.reason, s.suggestion
			rep.ConfidenceScores[s.scoreKey] = 0
		default:
			f.Reason, f.Suggestion = s.reason, s.suggestion
			rep.ConfidenceScores[s.scoreKey] = 0
			failed++
			if s.missing != "" {
				missingCritical++
			}
		}
		rep.Findings = append(rep.Findings, f)
	}

	rep.ExtractionRate = int(math.Round(float64(rep.SuccessfulSections) / float64(rep.TotalSections) * 100))
	rep.ConfidenceScores["overall"] = rep.ExtractionRate

	rep.SourcePages = sourcePages(r)
	pageCount := len(rep.SourcePages)
	switch {
	case pageCount <= 2:
		rep.DocumentComplexity = "Simple"
	case pageCount <= 5:
		rep.DocumentComplexity = "Medium"
	default:
		rep.DocumentComplexity = "Complex"
	}

	if rep.ExtractionRate < 50 {
		rep.Challenges = append(rep.Challenges, "Low extraction success rate - document may have non-standard formatting")
	}
	if failed >= 3 {
		rep.Challenges = append(rep.Challenges, "Multiple data types not found - document may be incomplete or use different terminology")
	}
	if pageCount > 10 {
		rep.Challenges = append(rep.Challenges, "Large document size may have caused some information to be truncated")
	}

	switch {
	case rep.ExtractionRate >= 80:
		rep.Recommendations = append(rep.Recommendations, "Excellent extraction rate - document is well-structured and AI-friendly")
	case rep.ExtractionRate >= 60:
		rep.Recommendations = append(rep.Recommendations, "Good extraction rate - some manual review recommended for missing data")
	default:
		rep.Recommendations = append(rep.Recommendations, "Low extraction rate - manual document review strongly recommended")
	}
	if failed > 0 {
		rep.Recommendations = append(rep.Recommendations, fmt.Sprintf("Review %d failed extraction(s) for critical missing information", failed))
	}
	if missingCritical > 0 {
		rep.Recommendations = append(rep.Recommendations, "Consider supplementing with additional document sources for missing critical information")
	}

	rep.Warnings = consistencyWarnings(r)
	return rep
}

func sourcePages(r model.StructuredResult) []int {
	seen := make(map[int]struct{})
	add := func(p model.Page) {
		if p > 0 {
			seen[int(p)] = struct{}{}
		}
	}
	for _, t := range r.Tables {
		add(t.Page)
	}
	for _, m := range r.Timeline {
		add(m.Page)
	}
	for _, d := range r.Deadlines {
		add(d.Page)
	}
	for _, qa := range r.Accordion {
		add(qa.Page)
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// consistencyWarnings flags deadlines that no task covers.
func consistencyWarnings(r model.StructuredResult) []string {
	warnings := []string{}
	if len(r.Deadlines) > 0 && len(r.Tasks) == 0 {
		return append(warnings, fmt.Sprintf("%d deadline(s) extracted but no tasks were derived", len(r.Deadlines)))
	}

	titles := make(map[string]struct{}, len(r.Tasks))
	for _, t := range r.Tasks {
		titles[strings.ToLower(strings.TrimSpace(t.Title))] = struct{}{}
	}
	for _, d := range r.Deadlines {
		related := strings.ToLower(strings.TrimSpace(d.RelatedTask))
		if related == "" {
			warnings = append(warnings, fmt.Sprintf("deadline %q has no related task", d.Name))
			continue
		}
		if _, ok := titles[related]; !ok {
			warnings = append(warnings, fmt.Sprintf("deadline %q refers to unknown task %q", d.Name, d.RelatedTask))
		}
	}
	return warnings
}
