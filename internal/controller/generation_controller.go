package controller

import (
	"docgen-be/internal/dto"
	"docgen-be/internal/pkg/serverutils"
	"docgen-be/internal/service"
	ws "docgen-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	WorkflowStatus(ctx *fiber.Ctx) error
	ListWorkflows(ctx *fiber.Ctx) error
	BuildStyleProfile(ctx *fiber.Ctx) error
}

type generationController struct {
	generationService service.IGenerationService
	retrievalService  service.IRetrievalService
	hub               *ws.Hub
}

func NewGenerationController(
	generationService service.IGenerationService,
	retrievalService service.IRetrievalService,
	hub *ws.Hub,
) IGenerationController {
	return &generationController{
		generationService: generationService,
		retrievalService:  retrievalService,
		hub:               hub,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/api")
	h.Post("/generate", serverutils.JwtMiddleware, c.Generate)
	h.Get("/workflows", c.ListWorkflows)
	h.Get("/workflows/:id", c.WorkflowStatus)
	h.Post("/style-profile", c.BuildStyleProfile)

	// Progress stream for a running workflow. The upgrade check has to happen
	// before the websocket handler takes over the connection.
	h.Use("/workflows/:id/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/workflows/:id/ws", websocket.New(func(conn *websocket.Conn) {
		workflowId, err := uuid.Parse(conn.Params("id"))
		if err != nil {
			conn.Close()
			return
		}
		ws.ServeWs(c.hub, conn, workflowId)
	}))
}

func (c *generationController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate document", res))
}

func (c *generationController) WorkflowStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewBadRequestError("invalid workflow id")
	}

	res, err := c.generationService.WorkflowStatus(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return serverutils.NewNotFoundError("workflow not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show workflow", res))
}

func (c *generationController) ListWorkflows(ctx *fiber.Ctx) error {
	status := ctx.Query("status", "")
	limit := ctx.QueryInt("limit", 20)

	res, err := c.generationService.ListWorkflows(ctx.Context(), status, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list workflows", res))
}

func (c *generationController) BuildStyleProfile(ctx *fiber.Ctx) error {
	var req dto.BuildStyleProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retrievalService.BuildStyleProfile(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success build style profile", res))
}
