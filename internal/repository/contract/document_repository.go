package contract

import (
	"context"

	"docgen-be/internal/entity"
	"docgen-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateFeedbackScore writes the score column only, leaving content alone.
	UpdateFeedbackScore(ctx context.Context, id uuid.UUID, score int) error
}
