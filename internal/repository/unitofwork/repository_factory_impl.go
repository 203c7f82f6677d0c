package unitofwork

import (
	"context"

	"gorm.io/gorm"
)

type GormRepositoryFactory struct {
	db *gorm.DB
}

func NewGormRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &GormRepositoryFactory{db: db}
}

func (f *GormRepositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db.WithContext(ctx))
}
