package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/services"
)

type ApplicationHandler struct {
	apps services.ApplicationService
	log  *zap.Logger
}

func NewApplicationHandler(apps services.ApplicationService, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		apps: apps,
		log:  logger.OrNop(log),
	}
}

// HandleList handles GET /applications
func (h *ApplicationHandler) HandleList(c *fiber.Ctx) error {
	apps, err := h.apps.List(sessionID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{"applications": apps})
}

// HandleCreate handles POST /applications
func (h *ApplicationHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.GenerateApplicationRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	outcome, err := h.apps.Generate(c.UserContext(), sessionID(c), req, nil)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"application": outcome.Application,
		"jobPosting":  outcome.JobPosting,
	})
}

// HandleStream handles POST /applications/stream. Each progress marker is
// written and flushed as one server-sent event.
func (h *ApplicationHandler) HandleStream(c *fiber.Ctx) error {
	var req models.GenerateApplicationRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// The fiber context is released before the body is streamed.
	ctx, cancel := context.WithCancel(context.Background())
	events := h.apps.GenerateStream(ctx, sessionID(c), req)
	log := h.log

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for ev := range events {
			payload, err := json.Marshal(ev)
			if err != nil {
				log.Error("❌ failed to encode progress event", zap.Error(err))
				return
			}

			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				log.Warn("⚠️ client went away", zap.Error(err))
				return
			}
			if err := w.Flush(); err != nil {
				log.Warn("⚠️ client went away", zap.Error(err))
				return
			}
		}
	}))

	return nil
}

// HandleGet handles GET /applications/:id
func (h *ApplicationHandler) HandleGet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	view, err := h.apps.Get(sessionID(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(view)
}

// HandleUpdateStatus handles PATCH /applications/:id
func (h *ApplicationHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req models.UpdateApplicationStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	app, err := h.apps.UpdateStatus(sessionID(c), id, req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{"application": app})
}

// HandlePDF handles GET /applications/:id/pdf
func (h *ApplicationHandler) HandlePDF(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	pdf, err := h.apps.RenderPDF(c.UserContext(), sessionID(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return sendPDF(c, fmt.Sprintf("cv-%s.pdf", id), pdf)
}
