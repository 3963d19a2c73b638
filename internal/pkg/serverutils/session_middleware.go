package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionMiddleware validates the caller-supplied session identifier. The
// backend never generates session IDs itself; a missing or malformed header
// is rejected before any service work happens.
func SessionMiddleware(ctx *fiber.Ctx) error {
	sessionID := ctx.Get("X-Session-ID")
	if sessionID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing X-Session-ID header."})
	}

	id, err := uuid.Parse(sessionID)
	if err != nil || id.Version() != 4 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid X-Session-ID; must be a UUID v4."})
	}

	ctx.Locals("session_id", sessionID)
	return ctx.Next()
}
