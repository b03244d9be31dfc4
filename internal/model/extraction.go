package model

import "time"

// UploadRequest is one validated submission. It lives for a single pipeline invocation.
type UploadRequest struct {
	Data     []byte
	Filename string
	Size     int64
}

// PipelineResult is the outcome of one pipeline invocation. On failure Error is set
// and StructuredData still carries a fully shaped (possibly partial) result.
type PipelineResult struct {
	Success        bool             `json:"success"`
	ExtractionID   string           `json:"extraction_id,omitempty"`
	URL            string           `json:"url,omitempty"`
	Error          *PipelineError   `json:"error,omitempty"`
	StructuredData StructuredResult `json:"structuredData"`
	Report         *Report          `json:"report,omitempty"`
	Attempts       int              `json:"attempts"`
}

// Extraction is a history record of one pipeline invocation.
// This is a pure domain model with no database-specific tags.
type Extraction struct {
	ID           string           `json:"id"`
	Filename     string           `json:"filename"`
	StoragePath  string           `json:"storage_path,omitempty"`
	Size         int64            `json:"size"`
	Success      bool             `json:"success"`
	ErrorKind    string           `json:"error_kind,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Attempts     int              `json:"attempts"`
	DurationMS   int64            `json:"duration_ms"`
	Result       StructuredResult `json:"result"`
	CreatedAt    time.Time        `json:"created_at"`
}
