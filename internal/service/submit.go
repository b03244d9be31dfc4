package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"contractapi/internal/extraction"
	"contractapi/internal/model"
)

var (
	ErrNoFile         = errors.New("no file provided")
	ErrEmptyFile      = errors.New("no file provided or file is empty")
	ErrFileTooLarge   = errors.New("file exceeds the upload size limit")
	ErrUnreadableFile = errors.New("uploaded file could not be read")
)

// DefaultFilename names uploads that arrive without one.
const DefaultFilename = "contract.pdf"

// Submit validates an upload and turns it into an UploadRequest. maxBytes <= 0
// disables the size ceiling. A declared size of zero or less is replaced by
// the actual payload length.
func Submit(data []byte, filename string, size, maxBytes int64) (model.UploadRequest, error) {
	if len(data) == 0 {
		return model.UploadRequest{}, ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return model.UploadRequest{}, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(data), maxBytes)
	}

	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filename = DefaultFilename
	}
	if size <= 0 {
		size = int64(len(data))
	}
	return model.UploadRequest{Data: data, Filename: filename, Size: size}, nil
}

// Rejected is the Failure result for an upload refused before the pipeline
// starts. It has the same shape as any other failure.
func Rejected(err error) *model.PipelineResult {
	msg := UserMessage(model.KindValidation, err)
	return &model.PipelineResult{
		Error:          model.NewPipelineError(model.KindValidation, msg, err),
		StructuredData: extraction.FailureResult(msg),
	}
}

// UserMessage words a failure for the person who uploaded the document.
func UserMessage(kind model.ErrorKind, err error) string {
	switch kind {
	case model.KindModelOverloaded:
		return "AI service is currently overloaded. Please try again in a few minutes."
	case model.KindRateLimited:
		return "Rate limit exceeded. Please wait a moment and try again."
	case model.KindQuotaExceeded:
		return "API quota exceeded. Please try again later."
	case model.KindTimeout:
		return "Processing took too long. Please try again with a smaller document."
	case model.KindParse:
		return "Could not read text from the PDF. The file may be corrupt or password protected."
	case model.KindStorage:
		return "Failed to store the uploaded file. Please try again."
	}
	if err != nil {
		return err.Error()
	}
	return "Unknown error occurred"
}
