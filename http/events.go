package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventType event type
type EventType string

const (
	EventModelReloaded    EventType = "model_reloaded"
	EventPredictionServed EventType = "prediction_served"
)

// Event is a serving event pushed to websocket subscribers.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans serving events out to connected websocket clients.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}
	closeOnce  sync.Once
	upgrader   websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Run drives the hub loop; call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			zap.L().Info("event client connected", zap.Int("total", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			zap.L().Info("event client disconnected", zap.Int("total", len(h.clients)))

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow client, drop it
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

func (h *Hub) Stop() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Broadcast queues the event for all clients; it never blocks the caller.
func (h *Hub) Broadcast(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		zap.L().Warn("failed to marshal event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// HandleWS upgrades the request and attaches the client to the hub.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, 64)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (c *wsClient) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
