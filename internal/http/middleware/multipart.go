package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireMultipart rejects requests whose body is not multipart/form-data
// with 415 before the upload is parsed.
func RequireMultipart() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ct := strings.ToLower(c.Get(fiber.HeaderContentType))
		if !strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
			return fiber.NewError(fiber.StatusUnsupportedMediaType, "expected multipart/form-data")
		}
		return c.Next()
	}
}
