package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a websocket connection to the hub as a watcher of one
// workflow run.
func ServeWs(hub *Hub, c *websocket.Conn, workflowID uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, WorkflowID: workflowID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // keep the handler goroutine alive until disconnect
}
