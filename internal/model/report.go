package model

// Report summarizes how much of the contract the extraction managed to recover.
type Report struct {
	ExtractionRate     int            `json:"extraction_rate"`
	TotalSections      int            `json:"total_sections"`
	SuccessfulSections int            `json:"successful_sections"`
	DocumentComplexity string         `json:"document_complexity"`
	SourcePages        []int          `json:"source_pages"`
	Findings           []Finding      `json:"findings"`
	Challenges         []string       `json:"challenges"`
	Recommendations    []string       `json:"recommendations"`
	ConfidenceScores   map[string]int `json:"confidence_scores"`
	Warnings           []string       `json:"warnings"`
}

// Finding describes one extracted section.
type Finding struct {
	Section    string `json:"section"`
	Found      bool   `json:"found"`
	Count      int    `json:"count"`
	Confidence string `json:"confidence,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Partial    bool   `json:"partial,omitempty"`
}
