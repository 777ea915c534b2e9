package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/yutapi3/picamstream/internal/store"
	"github.com/yutapi3/picamstream/internal/stream"
)

// StreamHandler serves the MJPEG feed. Every connection drives its own
// independent stream.Generator against the shared frame store.
type StreamHandler struct {
	frames *stream.FrameStore
	cfg    stream.GeneratorConfig
	events *store.Store
}

// NewStreamHandler creates a new StreamHandler. events may be nil.
func NewStreamHandler(frames *stream.FrameStore, cfg stream.GeneratorConfig, events *store.Store) *StreamHandler {
	return &StreamHandler{
		frames: frames,
		cfg:    cfg,
		events: events,
	}
}

// ServeHTTP streams multipart MJPEG chunks to the viewer until the viewer
// disconnects or the generator ends its sequence (fallback image served).
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	session := uuid.NewString()
	h.record(store.KindViewerConnected, session, r)
	defer h.record(store.KindViewerDisconnected, session, r)

	g := stream.NewGenerator(h.frames, h.cfg)
	clientGone := r.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		default:
		}

		chunk, ok := g.Next()
		if !ok {
			// Sequence ended (fallback served or rendering failed); the
			// browser's error handler takes it from here.
			return
		}

		if _, err := w.Write(chunk); err != nil {
			return
		}
		flusher.Flush()
	}
}

// record logs a viewer session event when an event store is configured.
func (h *StreamHandler) record(kind, session string, r *http.Request) {
	if h.events == nil {
		return
	}
	h.events.Events().Record(kind, fmt.Sprintf("session=%s remote=%s", session, r.RemoteAddr))
}
