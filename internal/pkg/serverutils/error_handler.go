package serverutils

import (
	"errors"

	"circuitech-be/pkg/agent"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors escaping the controllers into
// structured JSON responses. Stage failures from the agent keep their stage
// tag in the payload; the serving loop itself never crashes on them.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		var agentErr *agent.AgentError
		if errors.As(err, &agentErr) {
			return ctx.Status(agentErrorStatus(agentErr)).JSON(fiber.Map{
				"message": "Request processing failed.",
				"stage":   agentErr.Stage,
				"detail":  agentErr.Detail,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error."))
	}
}

func agentErrorStatus(err *agent.AgentError) int {
	switch err.Kind {
	case agent.KindMalformedModelOutput, agent.KindValidationError:
		return fiber.StatusUnprocessableEntity
	case agent.KindProviderError, agent.KindAuthError, agent.KindCompletionFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
