package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/services"
)

type ResumeHandler struct {
	resumes     services.ResumeService
	maxFileSize int64
	log         *zap.Logger
}

func NewResumeHandler(resumes services.ResumeService, maxFileSize int64, log *zap.Logger) *ResumeHandler {
	return &ResumeHandler{
		resumes:     resumes,
		maxFileSize: maxFileSize,
		log:         logger.OrNop(log),
	}
}

// HandleParseCV handles POST /parse-cv
func (h *ResumeHandler) HandleParseCV(c *fiber.Ctx) error {
	data, mimeType, filename, err := readUpload(c, "file", h.maxFileSize)
	if err != nil {
		return respondError(c, h.log, err)
	}

	resume, _, err := h.resumes.ParseCV(c.UserContext(), data, mimeType, filename)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(models.ParseCVResponse{ResumeID: resume.ID.String()})
}

// HandleATSRewrite handles POST /ats-rewrite
func (h *ResumeHandler) HandleATSRewrite(c *fiber.Ctx) error {
	var req models.ATSRewriteRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.resumes.ATSRewrite(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(result)
}

// HandleJDMatch handles POST /jd-match
func (h *ResumeHandler) HandleJDMatch(c *fiber.Ctx) error {
	var req models.JDMatchRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.resumes.JDMatch(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(result)
}

// HandleCoverLetter handles POST /cover-letter
func (h *ResumeHandler) HandleCoverLetter(c *fiber.Ctx) error {
	var req models.CoverLetterRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.resumes.CoverLetter(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(result)
}

// HandleDownload handles GET /resumes/:id/download?token=
func (h *ResumeHandler) HandleDownload(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	resume, err := h.resumes.Download(c.UserContext(), id, c.Query("token"))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(resume)
}
