package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans shelf events out to every connected UI client. The Electron
// renderer and the web build both keep one websocket open and refresh
// views when events arrive, instead of polling.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

type Stats struct {
	Clients int `json:"clients"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// BroadcastJSON sends v to every client. Clients whose write fails are
// dropped on the spot.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients {
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{Clients: len(h.clients)}
}
