package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/services"
)

type CVHandler struct {
	cvs         services.CVService
	maxFileSize int64
	log         *zap.Logger
}

func NewCVHandler(cvs services.CVService, maxFileSize int64, log *zap.Logger) *CVHandler {
	return &CVHandler{
		cvs:         cvs,
		maxFileSize: maxFileSize,
		log:         logger.OrNop(log),
	}
}

// HandleSaveCV handles POST /cv
func (h *CVHandler) HandleSaveCV(c *fiber.Ctx) error {
	var req models.SaveCVRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	cv, err := h.cvs.SaveCV(sessionID(c), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{"cv": cv})
}

// HandleUploadCV handles POST /cv/upload
func (h *CVHandler) HandleUploadCV(c *fiber.Ctx) error {
	data, mimeType, filename, err := readUpload(c, "file", h.maxFileSize)
	if err != nil {
		return respondError(c, h.log, err)
	}

	cv, sections, err := h.cvs.UploadCV(sessionID(c), c.FormValue("title"), data, mimeType, filename)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"cv":       cv,
		"sections": sections,
	})
}
