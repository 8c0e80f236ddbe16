package server

import (
	"net/http"
	"sync"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler broadcasts session state to WebSocket clients at ~15 Hz.
type EventsHandler struct {
	server  *Server
	logger  *charmlog.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	once    sync.Once
}

// NewEventsHandler creates an EventsHandler and starts its broadcast
// loop. The loop runs until Close.
func NewEventsHandler(s *Server, logger *charmlog.Logger) *EventsHandler {
	h := &EventsHandler{
		server:  s,
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
		stopCh:  make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// Close stops the broadcast loop and disconnects every client. Safe to
// call more than once.
func (h *EventsHandler) Close() {
	h.once.Do(func() {
		close(h.stopCh)

		h.mu.Lock()
		defer h.mu.Unlock()
		for conn := range h.clients {
			conn.Close()
		}
	})
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
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

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast pushes the current session state to every client.
func (h *EventsHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 Hz
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		idle := len(h.clients) == 0
		h.mu.RUnlock()
		if idle {
			continue
		}

		state := h.server.currentState()

		h.mu.RLock()
		for conn := range h.clients {
			if err := conn.WriteJSON(state); err != nil {
				h.logger.Debug("websocket write failed", "err", err)
			}
		}
		h.mu.RUnlock()
	}
}
