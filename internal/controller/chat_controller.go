package controller

import (
	"github.com/gofiber/fiber/v2"

	"doc-session-be/internal/dto"
	"doc-session-be/internal/pkg/serverutils"
	"doc-session-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
	Metrics(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1/:id")
	h.Post("/query", c.Query)
	h.Get("/history", c.History)
	h.Delete("/history", c.ClearHistory)
	h.Get("/metrics", c.Metrics)
	h.Get("/summary", c.Summary)
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.chatService.Query(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success query", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", 0) // 0 means everything retained
	res, err := c.chatService.History(ctx.Context(), id, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.ClearHistory(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear history", nil))
}

func (c *chatController) Metrics(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.Metrics(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get metrics", res))
}

func (c *chatController) Summary(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.Summary(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get summary", res))
}
