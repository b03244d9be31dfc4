package model

import "fmt"

// ErrorKind classifies a pipeline failure so callers can word the notice they show.
type ErrorKind string

const (
	KindValidation      ErrorKind = "ValidationError"
	KindStorage         ErrorKind = "StorageError"
	KindParse           ErrorKind = "ParseError"
	KindModelOverloaded ErrorKind = "ModelOverloaded"
	KindRateLimited     ErrorKind = "RateLimited"
	KindQuotaExceeded   ErrorKind = "QuotaExceeded"
	KindUnknownModel    ErrorKind = "UnknownModelError"
	KindTimeout         ErrorKind = "Timeout"
)

// Retryable reports whether failures of this kind are transient on the model side.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindModelOverloaded, KindRateLimited, KindQuotaExceeded:
		return true
	}
	return false
}

// PipelineError is a classified failure of one pipeline stage.
type PipelineError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError builds a PipelineError.
func NewPipelineError(kind ErrorKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: cause}
}
