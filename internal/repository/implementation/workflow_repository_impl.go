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

type WorkflowRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkflowMapper
}

func NewWorkflowRepository(db *gorm.DB) contract.WorkflowRepository {
	return &WorkflowRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkflowMapper(),
	}
}

func (r *WorkflowRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WorkflowRepositoryImpl) Create(ctx context.Context, workflow *entity.WorkflowExecution) error {
	m := r.mapper.ToModel(workflow)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*workflow = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkflowRepositoryImpl) Update(ctx context.Context, workflow *entity.WorkflowExecution) error {
	m := r.mapper.ToModel(workflow)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*workflow = *r.mapper.ToEntity(m)
	return nil
}

func (r *WorkflowRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WorkflowExecution, error) {
	var m model.WorkflowExecution
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WorkflowRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WorkflowExecution, error) {
	var models []*model.WorkflowExecution
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	workflows := make([]*entity.WorkflowExecution, len(models))
	for i, m := range models {
		workflows[i] = r.mapper.ToEntity(m)
	}
	return workflows, nil
}

func (r *WorkflowRepositoryImpl) CreateAgentExecution(ctx context.Context, agent *entity.AgentExecution) error {
	m := r.mapper.AgentToModel(agent)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*agent = *r.mapper.AgentToEntity(m)
	return nil
}

func (r *WorkflowRepositoryImpl) FindAgentExecutions(ctx context.Context, specs ...specification.Specification) ([]*entity.AgentExecution, error) {
	var models []*model.AgentExecution
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	agents := make([]*entity.AgentExecution, len(models))
	for i, m := range models {
		agents[i] = r.mapper.AgentToEntity(m)
	}
	return agents, nil
}
