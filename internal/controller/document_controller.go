package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"doc-session-be/internal/dto"
	"doc-session-be/internal/pkg/apperror"
	"doc-session-be/internal/pkg/serverutils"
	"doc-session-be/internal/service"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	UploadFile(ctx *fiber.Ctx) error
	UploadText(ctx *fiber.Ctx) error
	UploadURL(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1/:id/document")
	h.Post("", c.UploadFile)
	h.Post("/text", c.UploadText)
	h.Post("/url", c.UploadURL)
	h.Get("", c.List)
	h.Get("/:docId", c.Status)
}

func (c *documentController) UploadFile(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperror.Validation("multipart field 'file' is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, "failed to open upload", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, "failed to read upload", err)
	}

	res, err := c.documentService.UploadFile(ctx.Context(), id, fileHeader.Filename, content)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document accepted", res))
}

func (c *documentController) UploadText(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UploadTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.documentService.UploadText(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document accepted", res))
}

func (c *documentController) UploadURL(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UploadURLRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.documentService.UploadURL(ctx.Context(), id, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document accepted", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Status(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}
	docId, err := uuid.Parse(ctx.Params("docId"))
	if err != nil {
		return apperror.Validation("invalid document id")
	}

	res, err := c.documentService.Status(ctx.Context(), id, docId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get document status", res))
}
