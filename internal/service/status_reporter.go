// FILE: internal/service/status_reporter.go
// PURPOSE: Bridges workflow phase updates onto the websocket hub so watchers
// see live progress for a run.
package service

import (
	"context"

	"docgen-be/internal/websocket"

	"github.com/google/uuid"
)

type hubStatusReporter struct {
	hub *websocket.Hub
}

// NewHubStatusReporter adapts the websocket hub to the orchestrator's
// reporter contract.
func NewHubStatusReporter(hub *websocket.Hub) *hubStatusReporter {
	return &hubStatusReporter{hub: hub}
}

func (r *hubStatusReporter) Report(_ context.Context, workflowId uuid.UUID, phase string, detail map[string]interface{}) {
	if r.hub == nil {
		return
	}
	r.hub.Publish(workflowId, phase, detail)
}
