package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/pkg/logger"
)

// OrderEvent is pushed to connected admin clients when an order
// changes state.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    uint      `json:"order_id"`
	UserEmail  string    `json:"user_email"`
	TotalCents int64     `json:"total_cents"`
	LineCount  int       `json:"line_count"`
	OccurredAt time.Time `json:"occurred_at"`
}

const EventOrderSubmitted = "order_submitted"

// Hub fans order events out to connected admin clients. The feed is
// one-way; client messages are ignored. Delivery is best effort and a
// slow client gets disconnected rather than blocking the hub.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

// Run processes hub events. Call it once from a goroutine at startup.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Order feed client connected", map[string]interface{}{
				"user_id":       client.UserID,
				"total_clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("Order feed client disconnected", map[string]interface{}{
				"user_id":       client.UserID,
				"total_clients": total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					go h.Unregister(client)
					logger.Warn("Order feed client send buffer full, disconnecting", map[string]interface{}{
						"user_id": client.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the feed
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the feed
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NotifyOrderSubmitted pushes an order_submitted event to all
// connected clients. A full broadcast channel drops the event.
func (h *Hub) NotifyOrderSubmitted(order *model.Order) {
	event := OrderEvent{
		Type:       EventOrderSubmitted,
		OrderID:    order.ID,
		UserEmail:  order.User.Email,
		TotalCents: order.TotalCents,
		LineCount:  len(order.OrderItems),
		OccurredAt: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal order event", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Order feed broadcast channel full, event dropped", map[string]interface{}{
			"order_id": order.ID,
		})
	}
}
