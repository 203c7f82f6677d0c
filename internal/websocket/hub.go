package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"docgen-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redis channel relaying progress frames between instances
const clusterChannel = "workflow_progress"

// Hub fans workflow progress frames out to connected clients. Clients
// subscribe per workflow id, so a frame only reaches watchers of that run.
type Hub struct {
	// workflow id -> connected watchers (a run can have several tabs open)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// cross-instance relay, optional
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.WorkflowID] = append(h.clients[client.WorkflowID], client)
			h.mu.Unlock()
			h.logger.Info("hub", "Watcher registered", map[string]interface{}{"workflow_id": client.WorkflowID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.WorkflowID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.WorkflowID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.WorkflowID]) == 0 {
					delete(h.clients, client.WorkflowID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ProgressFrame is the wire shape pushed to watchers.
type ProgressFrame struct {
	Type       string                 `json:"type"`
	WorkflowID uuid.UUID              `json:"workflow_id"`
	Phase      string                 `json:"phase"`
	Detail     map[string]interface{} `json:"detail,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Publish delivers one progress frame to local watchers of the workflow and
// relays it to other instances through redis.
func (h *Hub) Publish(workflowID uuid.UUID, phase string, detail map[string]interface{}) {
	frame := ProgressFrame{
		Type:       "workflow_progress",
		WorkflowID: workflowID,
		Phase:      phase,
		Detail:     detail,
		Timestamp:  time.Now().UTC(),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.deliverLocal(workflowID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"workflow_id": workflowID.String(),
			"message":     json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

func (h *Hub) deliverLocal(workflowID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[workflowID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("hub", "Watcher buffer full, dropping connection", map[string]interface{}{"workflow_id": workflowID})
			close(client.Send)
			h.unregister <- client
		}
	}
}

// subscribeToRedis receives frames published by sibling instances and hands
// them to any local watchers of the same workflow.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			WorkflowID string          `json:"workflow_id"`
			Message    json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("hub", "Malformed cluster frame", map[string]interface{}{"error": err.Error()})
			continue
		}

		workflowID, err := uuid.Parse(payload.WorkflowID)
		if err != nil {
			continue
		}

		h.deliverLocal(workflowID, payload.Message)
	}
}
