package implementation

import (
	"context"
	"errors"

	"docgen-be/internal/entity"
	"docgen-be/internal/mapper"
	"docgen-be/internal/model"
	"docgen-be/internal/repository/contract"
	"docgen-be/internal/repository/specification"

	"gorm.io/gorm"
)

type StyleProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StyleProfileMapper
}

func NewStyleProfileRepository(db *gorm.DB) contract.StyleProfileRepository {
	return &StyleProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewStyleProfileMapper(),
	}
}

func (r *StyleProfileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *StyleProfileRepositoryImpl) Create(ctx context.Context, profile *entity.StyleProfile) error {
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}

func (r *StyleProfileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StyleProfile, error) {
	var m model.StyleProfileRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StyleProfileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StyleProfile, error) {
	var models []*model.StyleProfileRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	profiles := make([]*entity.StyleProfile, len(models))
	for i, m := range models {
		profiles[i] = r.mapper.ToEntity(m)
	}
	return profiles, nil
}
