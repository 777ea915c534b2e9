// Package server provides the HTTP layer for the picamstream MJPEG server.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yutapi3/picamstream/internal/store"
	"github.com/yutapi3/picamstream/internal/stream"
)

// Config holds the server configuration.
type Config struct {
	Frames   *stream.FrameStore
	Pipeline *stream.Pipeline
	Stream   stream.GeneratorConfig
	Store    *store.Store
}

// Server represents the HTTP server for the picamstream application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)

	// The stream endpoint needs a frame store to read from.
	if s.config.Frames != nil {
		s.mux.Handle("/video_feed", NewStreamHandler(s.config.Frames, s.config.Stream, s.config.Store))
		s.mux.Handle("/api/ws/status", NewStatusHandler(s.config.Pipeline, s.config.Frames))
	}

	// The event log is optional; without a store the endpoint is absent.
	if s.config.Store != nil {
		s.mux.HandleFunc("/api/events", s.handleEvents)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	writeJSON(w, response)
}

// handleStatus handles GET requests to /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, s.statusPayload())
}

// statusPayload builds the status document shared by the JSON endpoint and
// the websocket push.
func (s *Server) statusPayload() map[string]interface{} {
	state := stream.StateNotStarted
	if s.config.Pipeline != nil {
		state = s.config.Pipeline.State()
	}

	hasFrame := false
	if s.config.Frames != nil {
		_, hasFrame = s.config.Frames.Read()
	}

	return map[string]interface{}{
		"capture_state": state,
		"has_frame":     hasFrame,
		"uptime":        time.Since(s.start).String(),
		"timestamp":     time.Now().UnixMilli(),
	}
}

// handleEvents handles GET requests to /api/events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	events, err := s.config.Store.Events().ListRecent(100)
	if err != nil {
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}

	type eventDoc struct {
		ID        string    `json:"id"`
		Kind      string    `json:"kind"`
		Detail    string    `json:"detail"`
		CreatedAt time.Time `json:"created_at"`
	}

	docs := make([]eventDoc, 0, len(events))
	for _, e := range events {
		docs = append(docs, eventDoc{ID: e.ID, Kind: e.Kind, Detail: e.Detail, CreatedAt: e.CreatedAt})
	}

	writeJSON(w, map[string]interface{}{"events": docs})
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
