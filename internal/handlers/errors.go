package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-tailor/internal/services"
)

// RequestError is a client mistake caught before any service runs.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func badRequest(msg string) error {
	return &RequestError{Message: msg}
}

// respondError maps service errors to a status and a short message.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status, msg := statusFor(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	}
	if status >= fiber.StatusInternalServerError {
		log.Error("❌ request failed", fields...)
	} else {
		log.Warn("⚠️ request rejected", fields...)
	}

	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

func statusFor(err error) (int, string) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return fiber.StatusBadRequest, reqErr.Message
	}

	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		return fiber.StatusUnsupportedMediaType, services.ErrUnsupportedFormat.Error()
	case errors.Is(err, services.ErrExtractionFailure):
		return fiber.StatusUnprocessableEntity, services.ErrExtractionFailure.Error()
	case errors.Is(err, services.ErrProviderUnavailable):
		return fiber.StatusServiceUnavailable, services.ErrProviderUnavailable.Error()
	case errors.Is(err, services.ErrProviderError):
		return fiber.StatusBadGateway, services.ErrProviderError.Error()
	case errors.Is(err, services.ErrMalformedJSON), errors.Is(err, services.ErrSchemaMismatch):
		return fiber.StatusBadRequest, "the model returned an unusable response"
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, services.ErrNotFound.Error()
	case errors.Is(err, services.ErrPaymentRequired):
		return fiber.StatusPaymentRequired, services.ErrPaymentRequired.Error()
	case errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusForbidden, services.ErrInvalidToken.Error()
	case errors.Is(err, services.ErrInvalidSignature):
		return fiber.StatusBadRequest, services.ErrInvalidSignature.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

// ErrorHandler handles errors that escape a handler, keeping fiber's own codes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
