package contract

import (
	"context"

	"docgen-be/internal/entity"
	"docgen-be/internal/repository/specification"
)

type WorkflowRepository interface {
	Create(ctx context.Context, workflow *entity.WorkflowExecution) error
	Update(ctx context.Context, workflow *entity.WorkflowExecution) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowExecution, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowExecution, error)
	CreateAgentExecution(ctx context.Context, agent *entity.AgentExecution) error
	FindAgentExecutions(ctx context.Context, specs ...specification.Specification) ([]*entity.AgentExecution, error)
}
