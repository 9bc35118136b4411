package controller

import (
	"github.com/gofiber/fiber/v2"

	"doc-session-be/internal/dto"
	"doc-session-be/internal/pkg/serverutils"
	"doc-session-be/internal/service"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Touch(ctx *fiber.Ctx) error
	UpdateLanguage(ctx *fiber.Ctx) error
	UpdatePrompt(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Post(":id/touch", c.Touch)
	h.Put(":id/language", c.UpdateLanguage)
	h.Put(":id/prompt", c.UpdatePrompt)
	h.Post(":id/restart", c.Restart)
	h.Delete(":id", c.Close)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return err
	}

	res, err := c.sessionService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *sessionController) Touch(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Touch(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success touch session", res))
}

func (c *sessionController) UpdateLanguage(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateLanguageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.sessionService.UpdateLanguage(ctx.Context(), id, req.Language); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success update language", nil))
}

func (c *sessionController) UpdatePrompt(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdatePromptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.sessionService.UpdatePrompt(ctx.Context(), id, req.CustomPrompt); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success update prompt", nil))
}

func (c *sessionController) Restart(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Restart(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success restart session", res))
}

func (c *sessionController) Close(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.Close(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success close session", nil))
}
