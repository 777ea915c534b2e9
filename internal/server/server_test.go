package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yutapi3/picamstream/internal/store"
	"github.com/yutapi3/picamstream/internal/stream"
)

// testStreamConfig compresses the startup window so degraded-mode tests run fast.
func testStreamConfig() stream.GeneratorConfig {
	return stream.GeneratorConfig{
		FrameInterval:   time.Millisecond,
		PollInterval:    time.Millisecond,
		MaxPolls:        2,
		FallbackWidth:   64,
		FallbackHeight:  48,
		FallbackCaption: "Cannot connect to camera",
	}
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_Index(t *testing.T) {
	s := New(Config{Frames: stream.NewFrameStore(), Stream: testStreamConfig()})

	t.Run("serves viewer page at root", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q, want text/html", ct)
		}

		body := rec.Body.String()
		for _, want := range []string{
			`src="/video_feed"`,
			"handleImageError",
			"5000",
			"new Date().getTime()",
		} {
			if !strings.Contains(body, want) {
				t.Errorf("index page missing %q", want)
			}
		}
	})

	t.Run("returns 404 for unknown paths", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestServer_Status(t *testing.T) {
	frames := stream.NewFrameStore()
	s := New(Config{Frames: frames, Stream: testStreamConfig()})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["capture_state"] != string(stream.StateNotStarted) {
		t.Errorf("capture_state = %v, want %v", response["capture_state"], stream.StateNotStarted)
	}
	if response["has_frame"] != false {
		t.Errorf("has_frame = %v, want false", response["has_frame"])
	}

	frames.Publish([]byte("frame"))

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["has_frame"] != true {
		t.Errorf("has_frame = %v, want true after publish", response["has_frame"])
	}
}

func TestServer_EventsRequiresStore(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d without store, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_Events(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer st.Close()

	st.Events().Record(store.KindCaptureState, "running: camera opened")

	s := New(Config{Store: st})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		Events []struct {
			ID     string `json:"id"`
			Kind   string `json:"kind"`
			Detail string `json:"detail"`
		} `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(response.Events))
	}
	if response.Events[0].Kind != store.KindCaptureState {
		t.Errorf("event kind = %q, want %q", response.Events[0].Kind, store.KindCaptureState)
	}
}
