// FILE: internal/service/generation_service.go
package service

import (
	"context"

	"docgen-be/internal/dto"
	"docgen-be/internal/repository/specification"
	"docgen-be/internal/repository/unitofwork"
	"docgen-be/pkg/docgen/workflow"

	"github.com/google/uuid"
)

type IGenerationService interface {
	Generate(ctx context.Context, req *dto.GenerateDocumentRequest) (*dto.GenerateDocumentResponse, error)
	WorkflowStatus(ctx context.Context, id uuid.UUID) (*dto.WorkflowStatusResponse, error)
	ListWorkflows(ctx context.Context, status string, limit int) ([]*dto.WorkflowStatusResponse, error)
}

type generationService struct {
	orchestrator *workflow.Orchestrator
	uowFactory   unitofwork.RepositoryFactory
}

func NewGenerationService(orchestrator *workflow.Orchestrator, uowFactory unitofwork.RepositoryFactory) IGenerationService {
	return &generationService{
		orchestrator: orchestrator,
		uowFactory:   uowFactory,
	}
}

// Generate runs the whole pipeline synchronously. Live progress goes out over
// the websocket hub; the HTTP response carries the terminal outcome.
func (s *generationService) Generate(ctx context.Context, req *dto.GenerateDocumentRequest) (*dto.GenerateDocumentResponse, error) {
	outcome := s.orchestrator.Run(ctx, workflow.Request{
		DocType:       req.DocType,
		Summary:       req.Summary,
		Requirements:  req.Requirements,
		Style:         req.Style,
		Feedback:      req.Feedback,
		MaxIterations: req.MaxIterations,
	})

	return &dto.GenerateDocumentResponse{
		Status:       string(outcome.Status),
		WorkflowId:   outcome.WorkflowId,
		DocumentId:   outcome.DocumentId,
		Content:      outcome.Content,
		WordCount:    outcome.WordCount,
		QualityScore: outcome.QualityScore,
		Iterations:   outcome.Iterations,
		ErrorMessage: outcome.ErrorMessage,
		Degradations: outcome.Degradations,
		Messages:     outcome.Messages,
	}, nil
}

func (s *generationService) WorkflowStatus(ctx context.Context, id uuid.UUID) (*dto.WorkflowStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	execution, err := uow.WorkflowRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if execution == nil {
		return nil, nil
	}

	agents, err := uow.WorkflowRepository().FindAgentExecutions(ctx,
		specification.FilterBy{Field: "workflow_id", Value: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.WorkflowStatusResponse{
		Id:             execution.Id,
		DocumentId:     execution.DocumentId,
		DocType:        execution.DocType,
		Status:         execution.Status,
		QualityScore:   execution.QualityScore,
		IterationCount: execution.IterationCount,
		ErrorMessage:   execution.ErrorMessage,
		Telemetry:      execution.Telemetry,
		StartedAt:      execution.StartedAt,
		CompletedAt:    execution.CompletedAt,
	}
	for _, agent := range agents {
		res.Agents = append(res.Agents, dto.WorkflowAgentItem{
			AgentName: agent.AgentName,
			Status:    agent.Status,
			Detail:    agent.Detail,
			CreatedAt: agent.CreatedAt,
		})
	}
	return res, nil
}

func (s *generationService) ListWorkflows(ctx context.Context, status string, limit int) ([]*dto.WorkflowStatusResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "started_at", Desc: true},
		specification.Pagination{Limit: limit},
	}
	if status != "" {
		specs = append(specs, specification.ByWorkflowStatus{Status: status})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	executions, err := uow.WorkflowRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.WorkflowStatusResponse, 0, len(executions))
	for _, execution := range executions {
		res = append(res, &dto.WorkflowStatusResponse{
			Id:             execution.Id,
			DocumentId:     execution.DocumentId,
			DocType:        execution.DocType,
			Status:         execution.Status,
			QualityScore:   execution.QualityScore,
			IterationCount: execution.IterationCount,
			ErrorMessage:   execution.ErrorMessage,
			StartedAt:      execution.StartedAt,
			CompletedAt:    execution.CompletedAt,
		})
	}
	return res, nil
}
