package controller

import (
	"circuitech-be/internal/dto"
	"circuitech-be/internal/pkg/serverutils"
	"circuitech-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPinmapController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
}

type pinmapController struct {
	pinmapService service.IPinmapService
	rateLimit     fiber.Handler
}

func NewPinmapController(pinmapService service.IPinmapService, rateLimit fiber.Handler) IPinmapController {
	return &pinmapController{
		pinmapService: pinmapService,
		rateLimit:     rateLimit,
	}
}

func (c *pinmapController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pinmap/v1")
	h.Use(serverutils.SessionMiddleware)
	h.Use(c.rateLimit)
	h.Post("", c.Generate)
}

func (c *pinmapController) Generate(ctx *fiber.Ctx) error {
	sessionIdStr := ctx.Locals("session_id").(string)
	sessionId, _ := uuid.Parse(sessionIdStr)

	var req dto.PinmapRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.pinmapService.GeneratePinmap(ctx.UserContext(), sessionId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
