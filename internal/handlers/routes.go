package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Resume      *ResumeHandler
	CV          *CVHandler
	Application *ApplicationHandler
	Export      *ExportHandler
}

// Register mounts every endpoint under api. Session-scoped routes go through
// RequireSession.
func Register(api fiber.Router, h Handlers) {
	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/parse-cv", h.Resume.HandleParseCV)
	api.Post("/ats-rewrite", h.Resume.HandleATSRewrite)
	api.Post("/jd-match", h.Resume.HandleJDMatch)
	api.Post("/cover-letter", h.Resume.HandleCoverLetter)
	api.Get("/resumes/:id/download", h.Resume.HandleDownload)

	api.Post("/export-pdf", h.Export.HandleExportPDF)
	api.Post("/payment-webhook", h.Export.HandlePaymentWebhook)

	api.Post("/cv", RequireSession, h.CV.HandleSaveCV)
	api.Post("/cv/upload", RequireSession, h.CV.HandleUploadCV)

	apps := api.Group("/applications", RequireSession)
	apps.Get("/", h.Application.HandleList)
	apps.Post("/", h.Application.HandleCreate)
	apps.Post("/stream", h.Application.HandleStream)
	apps.Get("/:id", h.Application.HandleGet)
	apps.Patch("/:id", h.Application.HandleUpdateStatus)
	apps.Get("/:id/pdf", h.Application.HandlePDF)
}
