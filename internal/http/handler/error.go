package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"contractapi/internal/http/middleware"
	"contractapi/internal/model"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes the error envelope. message must be safe to show a
// client; internal error text never goes here.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// Envelopes for errors raised by fiber itself or by middleware.
var statusErrors = map[int]errorEnvelope{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {"FILE_TOO_LARGE", "request body exceeds the upload limit"},
	fiber.StatusUnsupportedMediaType:  {"UNSUPPORTED_MEDIA_TYPE", "expected multipart/form-data"},
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		env, ok := statusErrors[status]
		if !ok {
			status = fiber.StatusInternalServerError
			env = errorEnvelope{"INTERNAL_ERROR", "internal server error"}
		}
		return writeError(c, status, env.Code, env.Message)
	}
}

// statusForResult maps a pipeline outcome onto an HTTP status. Failures keep
// the PipelineResult body so clients can still render structuredData.
func statusForResult(res *model.PipelineResult) int {
	if res.Error == nil {
		return fiber.StatusOK
	}
	switch res.Error.Kind {
	case model.KindValidation:
		return fiber.StatusBadRequest
	case model.KindParse:
		return fiber.StatusUnprocessableEntity
	case model.KindModelOverloaded:
		return fiber.StatusServiceUnavailable
	case model.KindRateLimited, model.KindQuotaExceeded:
		return fiber.StatusTooManyRequests
	case model.KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		// StorageError, UnknownModelError: an upstream dependency failed.
		return fiber.StatusBadGateway
	}
}
