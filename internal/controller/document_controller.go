package controller

import (
	"io"
	"strconv"

	"docgen-be/internal/dto"
	"docgen-be/internal/pkg/serverutils"
	"docgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UpdateFeedback(ctx *fiber.Ctx) error
	SearchChunks(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService  service.IDocumentService
	ingestionService service.IIngestionService
	retrievalService service.IRetrievalService
}

func NewDocumentController(
	documentService service.IDocumentService,
	ingestionService service.IIngestionService,
	retrievalService service.IRetrievalService,
) IDocumentController {
	return &documentController{
		documentService:  documentService,
		ingestionService: ingestionService,
		retrievalService: retrievalService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Post("/documents", serverutils.JwtMiddleware, c.Ingest)
	h.Post("/upload", serverutils.JwtMiddleware, c.Upload)
	h.Get("/documents", c.List)
	h.Get("/documents/:id", c.Show)
	h.Put("/documents/:id", serverutils.JwtMiddleware, c.Update)
	h.Delete("/documents/:id", serverutils.JwtMiddleware, c.Delete)
	h.Put("/feedback/:id", serverutils.JwtMiddleware, c.UpdateFeedback)
	h.Post("/search", c.SearchChunks)
}

func (c *documentController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestionService.IngestContent(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ingest document", res))
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return serverutils.NewBadRequestError("missing file field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	docType := ctx.FormValue("doc_type", "")
	approved := ctx.FormValue("approved", "") == "true"
	feedbackScore, _ := strconv.Atoi(ctx.FormValue("feedback_score", "0"))

	res, err := c.ingestionService.IngestFile(ctx.Context(), fileHeader.Filename, data, docType, approved, feedbackScore)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid document id")
	}

	res, err := c.documentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewNotFoundError("document not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	docType := ctx.Query("doc_type", "")
	approvedOnly := ctx.Query("approved", "") == "true"
	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 20)

	res, err := c.documentService.List(ctx.Context(), docType, approvedOnly, page, pageSize)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid document id")
	}

	var req dto.UpdateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Update(ctx.Context(), &req)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewNotFoundError("document not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete document", nil))
}

func (c *documentController) UpdateFeedback(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid document id")
	}

	var req dto.UpdateFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.UpdateFeedback(ctx.Context(), &req)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewNotFoundError("document not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update feedback", res))
}

func (c *documentController) SearchChunks(ctx *fiber.Ctx) error {
	var req dto.SearchChunksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retrievalService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search chunks", res))
}
