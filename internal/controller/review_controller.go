package controller

import (
	"docgen-be/internal/dto"
	"docgen-be/internal/pkg/serverutils"
	"docgen-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReviewController interface {
	RegisterRoutes(r fiber.Router)
	Review(ctx *fiber.Ctx) error
	ReviewDocument(ctx *fiber.Ctx) error
	CheckCompliance(ctx *fiber.Ctx) error
}

type reviewController struct {
	reviewService   service.IReviewService
	documentService service.IDocumentService
}

func NewReviewController(reviewService service.IReviewService, documentService service.IDocumentService) IReviewController {
	return &reviewController{
		reviewService:   reviewService,
		documentService: documentService,
	}
}

func (c *reviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Post("/review", serverutils.JwtMiddleware, c.Review)
	h.Post("/review/:id", serverutils.JwtMiddleware, c.ReviewDocument)
	h.Post("/compliance", c.CheckCompliance)
}

func (c *reviewController) Review(ctx *fiber.Ctx) error {
	var req dto.ReviewDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.Review(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success review document", res))
}

// ReviewDocument runs a review pass against a stored document instead of raw
// request content.
func (c *reviewController) ReviewDocument(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid document id")
	}

	doc, err := c.documentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	if doc == nil {
		return serverutils.NewNotFoundError("document not found")
	}

	var req dto.ReviewDocumentRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return err
	}
	req.Content = doc.Content
	req.DocType = doc.DocType

	res, err := c.reviewService.Review(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success review document", res))
}

func (c *reviewController) CheckCompliance(ctx *fiber.Ctx) error {
	var req dto.ComplianceCheckRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reviewService.CheckCompliance(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success check compliance", res))
}
