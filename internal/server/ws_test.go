package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yutapi3/picamstream/internal/stream"
)

func TestStatusHandler_PushesStatus(t *testing.T) {
	frames := stream.NewFrameStore()
	frames.Publish([]byte("frame"))

	s := New(Config{Frames: frames, Stream: testStreamConfig()})
	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws/status"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	// The broadcast ticks once per second.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read status message: %v", err)
	}

	var status map[string]interface{}
	if err := json.Unmarshal(msg, &status); err != nil {
		t.Fatalf("status message is not JSON: %v", err)
	}

	if status["has_frame"] != true {
		t.Errorf("has_frame = %v, want true", status["has_frame"])
	}
	if status["capture_state"] != string(stream.StateNotStarted) {
		t.Errorf("capture_state = %v, want %v", status["capture_state"], stream.StateNotStarted)
	}
	if _, ok := status["timestamp"]; !ok {
		t.Error("status message missing timestamp")
	}
}
