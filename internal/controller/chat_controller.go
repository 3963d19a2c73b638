package controller

import (
	"circuitech-be/internal/dto"
	"circuitech-be/internal/pkg/serverutils"
	"circuitech-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	rateLimit   fiber.Handler
}

func NewChatController(chatService service.IChatService, rateLimit fiber.Handler) IChatController {
	return &chatController{
		chatService: chatService,
		rateLimit:   rateLimit,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.SessionMiddleware)
	h.Use(c.rateLimit)
	h.Post("", c.Chat)
	h.Get("session", c.GetSession)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	sessionIdStr := ctx.Locals("session_id").(string)
	sessionId, _ := uuid.Parse(sessionIdStr)

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body.")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.UserContext(), sessionId, &req)
	if err != nil {
		return err
	}

	// Responses keep the original wire shape; the frontend reads the fields
	// at the top level, not under a data envelope.
	return ctx.JSON(res)
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	sessionIdStr := ctx.Locals("session_id").(string)
	sessionId, _ := uuid.Parse(sessionIdStr)

	res, err := c.chatService.GetSessionState(ctx.UserContext(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
