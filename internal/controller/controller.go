package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"doc-session-be/internal/pkg/apperror"
)

// sessionIdParam parses the :id route parameter. A malformed id is a
// validation failure, not a 404.
func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid session id")
	}
	return id, nil
}
