package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/grusso/airdraw/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local preview only
	},
}

// EventsHandler broadcasts the per-frame gesture and tool state to
// connected websocket clients.
type EventsHandler struct {
	app     *app.App
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewEventsHandler creates an EventsHandler and starts its broadcast loop.
func NewEventsHandler(a *app.App) *EventsHandler {
	h := &EventsHandler{
		app:     a,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles websocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep the connection alive by reading (and discarding) messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast pushes state snapshots to all connected clients. Repeated
// identical states are skipped to keep the feed quiet while idle.
func (h *EventsHandler) broadcast() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	var last app.State
	sent := false

	for range ticker.C {
		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		state := h.app.State()
		if sent && state == last {
			continue
		}
		last = state
		sent = true

		h.mu.RLock()
		for conn := range h.clients {
			if err := conn.WriteJSON(state); err != nil {
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}
