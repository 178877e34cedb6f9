package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie = "tmj_session"
	SessionHeader = "X-Session-ID"

	sessionLocal = "session_id"
)

// RequireSession reads the caller's session from the cookie or header. Sessions
// are issued elsewhere; requests without one are refused.
func RequireSession(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Cookies(SessionCookie))
	if id == "" {
		id = strings.TrimSpace(c.Get(SessionHeader))
	}

	if id == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing session",
		})
	}

	c.Locals(sessionLocal, id)
	return c.Next()
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocal).(string)
	return id
}
