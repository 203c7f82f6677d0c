package controller

import (
	"docgen-be/internal/dto"
	"docgen-be/internal/pkg/serverutils"
	"docgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IExportController interface {
	RegisterRoutes(r fiber.Router)
	ExportDocument(ctx *fiber.Ctx) error
	ExportContent(ctx *fiber.Ctx) error
}

type exportController struct {
	exportService   service.IExportService
	documentService service.IDocumentService
}

func NewExportController(exportService service.IExportService, documentService service.IDocumentService) IExportController {
	return &exportController{
		exportService:   exportService,
		documentService: documentService,
	}
}

func (c *exportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Get("/export/:id", c.ExportDocument)
	h.Post("/export", c.ExportContent)
}

// ExportDocument converts a stored document and streams the file back.
func (c *exportController) ExportDocument(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid document id")
	}

	format := ctx.Query("format", "md")

	doc, err := c.documentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if doc == nil {
		return serverutils.NewNotFoundError("document not found")
	}

	res, err := c.exportService.Export(ctx.Context(), doc.Content, format, doc.Title)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, res.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+res.Filename+`"`)
	return ctx.Send(res.Data)
}

// ExportContent converts ad-hoc markdown without storing it first.
func (c *exportController) ExportContent(ctx *fiber.Ctx) error {
	var req dto.ExportDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.exportService.Export(ctx.Context(), req.Content, req.Format, req.Filename)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, res.ContentType)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+res.Filename+`"`)
	return ctx.Send(res.Data)
}
