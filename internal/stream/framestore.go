// Package stream implements the frame pipeline: a capture loop publishing
// JPEG frames into a shared single-slot store, and per-viewer generators
// that turn the latest frame into a multipart MJPEG sequence.
package stream

import "sync"

// FrameStore holds the most recent JPEG-encoded frame.
//
// It is a last-value cell, not a queue: only the newest frame matters and
// stale frames are dropped by replacement. A single capture loop writes it;
// any number of generators read it concurrently. Frames are immutable byte
// slices, so the lock only guards the slice header swap.
type FrameStore struct {
	mu    sync.Mutex
	frame []byte
}

// NewFrameStore creates an empty FrameStore.
func NewFrameStore() *FrameStore {
	return &FrameStore{}
}

// Publish replaces the stored frame with the given one.
func (s *FrameStore) Publish(frame []byte) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
}

// Read returns the current frame without blocking.
// The second return value is false when no frame has been published yet.
func (s *FrameStore) Read() ([]byte, bool) {
	s.mu.Lock()
	frame := s.frame
	s.mu.Unlock()

	return frame, frame != nil
}
