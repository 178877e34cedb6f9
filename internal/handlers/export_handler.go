package handlers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/logger"
	"alfredoptarigan/resume-tailor/internal/models"
	"alfredoptarigan/resume-tailor/internal/services"
)

const stripeSignatureHeader = "Stripe-Signature"

type ExportHandler struct {
	renderer services.DocumentRenderer
	payments services.PaymentService
	log      *zap.Logger
}

func NewExportHandler(renderer services.DocumentRenderer, payments services.PaymentService, log *zap.Logger) *ExportHandler {
	return &ExportHandler{
		renderer: renderer,
		payments: payments,
		log:      logger.OrNop(log),
	}
}

// HandleExportPDF handles POST /export-pdf
func (h *ExportHandler) HandleExportPDF(c *fiber.Ctx) error {
	var req models.ExportPDFRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, h.log, err)
	}

	pdf, err := h.renderer.RenderPDF(c.UserContext(), services.SanitizeHTML(req.HTML))
	if err != nil {
		return respondError(c, h.log, err)
	}

	return sendPDF(c, pdfFileName(req.FileName), pdf)
}

// HandlePaymentWebhook handles POST /payment-webhook
func (h *ExportHandler) HandlePaymentWebhook(c *fiber.Ctx) error {
	if err := h.payments.HandleWebhook(c.UserContext(), c.Body(), c.Get(stripeSignatureHeader)); err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{"received": true})
}

func sendPDF(c *fiber.Ctx, name string, pdf []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(pdf)
}

// pdfFileName keeps only a safe base name ending in .pdf.
func pdfFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, name)

	if name == "" || name == "." || name == "/" {
		return services.DefaultPDFName
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
