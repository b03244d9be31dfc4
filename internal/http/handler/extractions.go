package handler

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"contractapi/internal/export"
	"contractapi/internal/service"
)

func parseID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func notFoundOr500(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "extraction not found")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ListExtractions returns extraction history with limit & offset.
//
// @Summary List extraction history
// @Tags extractions
// @Produce json
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.ExtractionListResult
// @Failure 400 {object} errorPayload
// @Router /extractions [get]
func ListExtractions(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetExtraction returns one history record.
//
// @Summary Get an extraction
// @Tags extractions
// @Produce json
// @Param id path string true "Extraction ID"
// @Success 200 {object} model.Extraction
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /extractions/{id} [get]
func GetExtraction(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		e, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return notFoundOr500(c, err)
		}
		return c.JSON(e)
	}
}

// ExportExtraction downloads the structured result as an XLSX workbook.
//
// @Summary Export an extraction as XLSX
// @Tags extractions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Extraction ID"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /extractions/{id}/export [get]
func ExportExtraction(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		e, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return notFoundOr500(c, err)
		}

		var buf bytes.Buffer
		if err := export.WriteWorkbook(&buf, e.Result); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "EXPORT_FAILED", "could not build workbook")
		}

		name := strings.TrimSuffix(filepath.Base(e.Filename), filepath.Ext(e.Filename))
		if name == "" || name == "." {
			name = "contract"
		}
		c.Set(fiber.HeaderContentType, export.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, name+"-extraction.xlsx"))
		return c.Send(buf.Bytes())
	}
}

// ExtractionFile returns a fresh download URL for the stored contract.
//
// @Summary Get the stored contract URL
// @Tags extractions
// @Produce json
// @Param id path string true "Extraction ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errorPayload
// @Router /extractions/{id}/file [get]
func ExtractionFile(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.FileURL(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNoArtifact) {
				return writeError(c, fiber.StatusNotFound, "NO_FILE", "no stored file for this extraction")
			}
			return notFoundOr500(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}

// DeleteExtraction removes a record and its stored contract.
//
// @Summary Delete an extraction
// @Tags extractions
// @Param id path string true "Extraction ID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /extractions/{id} [delete]
func DeleteExtraction(svc service.ContractService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return notFoundOr500(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
