package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	WorkflowStatusRunning  = "running"
	WorkflowStatusSuccess  = "success"
	WorkflowStatusDegraded = "degraded"
	WorkflowStatusError    = "error"
)

type WorkflowExecution struct {
	Id             uuid.UUID
	DocumentId     *uuid.UUID
	DocType        string
	Status         string
	QualityScore   float64
	IterationCount int
	ErrorMessage   string
	Telemetry      map[string]interface{}
	StartedAt      time.Time
	CompletedAt    *time.Time
}

type AgentExecution struct {
	Id         uuid.UUID
	WorkflowId uuid.UUID
	AgentName  string
	Status     string
	DurationMs int64
	Detail     map[string]interface{}
	CreatedAt  time.Time
}
