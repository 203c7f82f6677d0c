package mapper

import (
	"encoding/json"

	"docgen-be/internal/entity"
	"docgen-be/internal/model"

	"gorm.io/datatypes"
)

type WorkflowMapper struct{}

func NewWorkflowMapper() *WorkflowMapper {
	return &WorkflowMapper{}
}

func (m *WorkflowMapper) ToEntity(w *model.WorkflowExecution) *entity.WorkflowExecution {
	if w == nil {
		return nil
	}

	var telemetry map[string]interface{}
	if len(w.Telemetry) > 0 {
		_ = json.Unmarshal(w.Telemetry, &telemetry)
	}

	return &entity.WorkflowExecution{
		Id:             w.Id,
		DocumentId:     w.DocumentId,
		DocType:        w.DocType,
		Status:         w.Status,
		QualityScore:   w.QualityScore,
		IterationCount: w.IterationCount,
		ErrorMessage:   w.ErrorMessage,
		Telemetry:      telemetry,
		StartedAt:      w.StartedAt,
		CompletedAt:    w.CompletedAt,
	}
}

func (m *WorkflowMapper) ToModel(w *entity.WorkflowExecution) *model.WorkflowExecution {
	if w == nil {
		return nil
	}

	var telemetry datatypes.JSON
	if w.Telemetry != nil {
		if raw, err := json.Marshal(w.Telemetry); err == nil {
			telemetry = raw
		}
	}

	return &model.WorkflowExecution{
		Id:             w.Id,
		DocumentId:     w.DocumentId,
		DocType:        w.DocType,
		Status:         w.Status,
		QualityScore:   w.QualityScore,
		IterationCount: w.IterationCount,
		ErrorMessage:   w.ErrorMessage,
		Telemetry:      telemetry,
		StartedAt:      w.StartedAt,
		CompletedAt:    w.CompletedAt,
	}
}

func (m *WorkflowMapper) AgentToEntity(a *model.AgentExecution) *entity.AgentExecution {
	if a == nil {
		return nil
	}

	var detail map[string]interface{}
	if len(a.Detail) > 0 {
		_ = json.Unmarshal(a.Detail, &detail)
	}

	return &entity.AgentExecution{
		Id:         a.Id,
		WorkflowId: a.WorkflowId,
		AgentName:  a.AgentName,
		Status:     a.Status,
		DurationMs: a.DurationMs,
		Detail:     detail,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *WorkflowMapper) AgentToModel(a *entity.AgentExecution) *model.AgentExecution {
	if a == nil {
		return nil
	}

	var detail datatypes.JSON
	if a.Detail != nil {
		if raw, err := json.Marshal(a.Detail); err == nil {
			detail = raw
		}
	}

	return &model.AgentExecution{
		Id:         a.Id,
		WorkflowId: a.WorkflowId,
		AgentName:  a.AgentName,
		Status:     a.Status,
		DurationMs: a.DurationMs,
		Detail:     detail,
		CreatedAt:  a.CreatedAt,
	}
}
