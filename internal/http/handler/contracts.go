package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"contractapi/internal/service"
)

// Multipart field names accepted for the contract file.
var uploadFields = []string{"pdf", "file"}

func formFile(c *fiber.Ctx) (*multipart.FileHeader, error) {
	var err error
	for _, name := range uploadFields {
		var fh *multipart.FileHeader
		if fh, err = c.FormFile(name); err == nil {
			return fh, nil
		}
	}
	return nil, err
}

// ProcessContract runs the extraction pipeline on an uploaded PDF.
//
// @Summary Extract structured data from a contract
// @Tags contracts
// @Accept mpfd
// @Produce json
// @Param pdf formData file true "Contract PDF (alias field: file)"
// @Success 200 {object} model.PipelineResult
// @Failure 400 {object} model.PipelineResult
// @Failure 413 {object} model.PipelineResult
// @Failure 422 {object} model.PipelineResult
// @Failure 429 {object} model.PipelineResult
// @Failure 502 {object} model.PipelineResult
// @Failure 503 {object} model.PipelineResult
// @Failure 504 {object} model.PipelineResult
// @Router /contracts [post]
func ProcessContract(svc service.ContractService, maxBytes int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := formFile(c)
		if err != nil {
			return rejectUpload(c, service.ErrNoFile)
		}
		if maxBytes > 0 && fh.Size > maxBytes {
			return rejectUpload(c, fmt.Errorf("%w: %d bytes, limit %d", service.ErrFileTooLarge, fh.Size, maxBytes))
		}

		f, err := fh.Open()
		if err != nil {
			return rejectUpload(c, service.ErrUnreadableFile)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return rejectUpload(c, service.ErrUnreadableFile)
		}

		req, err := service.Submit(data, fh.Filename, fh.Size, maxBytes)
		if err != nil {
			return rejectUpload(c, err)
		}

		res := svc.Process(c.UserContext(), req)
		return c.Status(statusForResult(res)).JSON(res)
	}
}

// rejectUpload answers with a ValidationError Failure; oversized files get 413.
func rejectUpload(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	if errors.Is(err, service.ErrFileTooLarge) {
		status = fiber.StatusRequestEntityTooLarge
	}
	return c.Status(status).JSON(service.Rejected(err))
}
