package ws

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

type userMessage struct {
	userID  uuid.UUID
	payload []byte
}

// Hub tracks live connections per user and fans messages out to them.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	send       chan userMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		send:       make(chan userMessage, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			total := h.countLocked()
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("[WS] Connected user_id=%s total_clients=%d", client.userID, total)
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.removeLocked(client)
			total := h.countLocked()
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("[WS] Disconnected user_id=%s total_clients=%d", client.userID, total)
			}

		case msg := <-h.send:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[msg.userID]))
			for c := range h.clients[msg.userID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- msg.payload:
				default:
					h.mutex.Lock()
					h.removeLocked(client)
					h.mutex.Unlock()
				}
			}
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, set := range h.clients {
		for c := range set {
			close(c.send)
		}
	}
	h.clients = make(map[uuid.UUID]map[*Client]bool)
}

func (h *Hub) countLocked() int {
	total := 0
	for _, set := range h.clients {
		total += len(set)
	}
	return total
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendToUser queues message for every connection of userID. Messages are
// dropped when the queue is full.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	if h == nil {
		return
	}
	select {
	case h.send <- userMessage{userID: userID, payload: message}:
	default:
		if h.logger != nil {
			h.logger.Printf("[WS] Send dropped user_id=%s reason=buffer_full", userID)
		}
	}
}

func (h *Hub) ClientCount(userID uuid.UUID) int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID])
}
