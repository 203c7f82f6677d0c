package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WorkflowExecution struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     *uuid.UUID     `gorm:"type:uuid;index"`
	DocType        string         `gorm:"index"`
	Status         string         `gorm:"index;not null"` // running, success, degraded, error
	QualityScore   float64        `gorm:"default:0"`
	IterationCount int            `gorm:"default:0"`
	ErrorMessage   string         `gorm:"type:text"`
	Telemetry      datatypes.JSON `gorm:"type:jsonb"`
	StartedAt      time.Time      `gorm:"autoCreateTime"`
	CompletedAt    *time.Time
}

func (WorkflowExecution) TableName() string {
	return "workflow_executions"
}

type AgentExecution struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkflowId uuid.UUID      `gorm:"type:uuid;not null;index"`
	AgentName  string         `gorm:"not null"`
	Status     string         `gorm:"not null"`
	DurationMs int64          `gorm:"default:0"`
	Detail     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (AgentExecution) TableName() string {
	return "agent_executions"
}
