package unitofwork

import (
	"context"

	"docgen-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	StyleProfileRepository() contract.StyleProfileRepository
	WorkflowRepository() contract.WorkflowRepository
}
