package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yutapi3/picamstream/internal/stream"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusHandler pushes capture status to clients over WebSocket once per
// second, complementing the index page's cosmetic status ticker.
type StatusHandler struct {
	pipeline *stream.Pipeline
	frames   *stream.FrameStore
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewStatusHandler creates a new StatusHandler and starts its broadcast loop.
func NewStatusHandler(pipeline *stream.Pipeline, frames *stream.FrameStore) *StatusHandler {
	h := &StatusHandler{
		pipeline: pipeline,
		frames:   frames,
		clients:  make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends the status document to all connected clients.
func (h *StatusHandler) broadcast() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		state := stream.StateNotStarted
		if h.pipeline != nil {
			state = h.pipeline.State()
		}
		_, hasFrame := h.frames.Read()

		msg, _ := json.Marshal(map[string]any{
			"capture_state": state,
			"has_frame":     hasFrame,
			"timestamp":     time.Now().UnixMilli(),
		})

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
