package serverutils

import (
	"doc-session-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps the error taxonomy to HTTP statuses. Expired sessions map
// to the same 404 as never-existed ones so absence leaks no information.
func statusFor(code apperror.Code) int {
	switch code {
	case apperror.CodeNotFound:
		return fiber.StatusNotFound
	case apperror.CodeValidation:
		return fiber.StatusBadRequest
	case apperror.CodePolicy:
		return fiber.StatusUnprocessableEntity
	case apperror.CodeUpstreamTransient:
		return fiber.StatusServiceUnavailable
	case apperror.CodeUpstreamPermanent:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware converts classified service errors into the JSON
// error envelope. Unclassified errors become opaque 500s.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if fe, ok := err.(*fiber.Error); ok {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		status := statusFor(apperror.CodeOf(err))
		return ctx.Status(status).JSON(ErrorResponse(status, apperror.MessageOf(err)))
	}
}
