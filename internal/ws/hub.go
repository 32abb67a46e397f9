package ws

import (
	"encoding/json"
	"sync"
)

// Client represents one WebSocket connection bound to a chat session.
type Client struct {
	UserID    uint
	SessionID uint
	Send      chan []byte
	hub       *Hub
	mu        sync.Mutex
	closed    bool
}

func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.Send)
	c.mu.Unlock()
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// Enqueue queues data without blocking. Returns false if the client is
// closed or its buffer is full. Held under mu so Close cannot shut the
// channel between the check and the send.
func (c *Client) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Hub tracks active chat connections per session so multiple tabs of the
// same conversation stay in sync.
type Hub struct {
	mu        sync.RWMutex
	bySession map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{bySession: make(map[uint]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.bySession[c.SessionID] == nil {
		h.bySession[c.SessionID] = make(map[*Client]struct{})
	}
	h.bySession[c.SessionID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.bySession[c.SessionID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.bySession, c.SessionID)
		}
	}
}

// BroadcastToSession fans a payload out to every connection on a session.
// Slow consumers are skipped rather than blocking the sender.
func (h *Hub) BroadcastToSession(sessionID uint, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.mu.RLock()
	m := h.bySession[sessionID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.Enqueue(data)
	}
}

func (h *Hub) SessionClientCount(sessionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bySession[sessionID])
}
