package contract

import (
	"context"

	"docgen-be/internal/entity"
	"docgen-be/internal/repository/specification"
)

type StyleProfileRepository interface {
	Create(ctx context.Context, profile *entity.StyleProfile) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StyleProfile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StyleProfile, error)
}
