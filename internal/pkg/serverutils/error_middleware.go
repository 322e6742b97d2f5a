package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into
// the standard failure envelope. fiber.Error keeps its status code,
// anything else becomes a 500 with a generic message.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(FailedResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(FailedResponse("internal server error"))
	}
}
