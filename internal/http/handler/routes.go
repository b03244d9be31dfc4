package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"contractapi/internal/http/middleware"
	"contractapi/internal/service"
	"contractapi/internal/storage"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. db and store
// may be nil when history or artifact storage is disabled.
func RegisterRoutes(app *fiber.App, db *sql.DB, store storage.Storage, svc service.ContractService, maxUploadBytes int64) {
	app.Get("/health", HealthCheck(db, store))
	app.Get("/healthz", LivenessProbe())

	app.Post("/contracts", middleware.RequireMultipart(), ProcessContract(svc, maxUploadBytes))

	app.Get("/extractions", ListExtractions(svc))
	app.Get("/extractions/:id", GetExtraction(svc))
	app.Get("/extractions/:id/export", ExportExtraction(svc))
	app.Get("/extractions/:id/file", ExtractionFile(svc))
	app.Delete("/extractions/:id", DeleteExtraction(svc))
}
