package capture

import (
	"fmt"
	"sync"
)

// MockCamera plays back pre-encoded JPEG frames for testing.
type MockCamera struct {
	frames  [][]byte
	index   int
	loop    bool
	mu      sync.Mutex
	running bool

	// Test controls.
	openErr      error
	readErr      error
	autofocusErr error
	closeCount   int
}

// NewMockCamera creates a MockCamera that plays back the given frames.
// When loop is true playback restarts from the first frame after the last.
func NewMockCamera(frames [][]byte, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openErr != nil {
		return c.openErr
	}

	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.running = false
	c.closeCount++
	return nil
}

func (c *MockCamera) ReadJPEG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}

	if c.readErr != nil {
		return nil, c.readErr
	}

	if len(c.frames) == 0 {
		return nil, fmt.Errorf("no frames available")
	}

	if c.index >= len(c.frames) {
		if c.loop {
			c.index = 0
		} else {
			return nil, fmt.Errorf("no more frames")
		}
	}

	frame := c.frames[c.index]
	c.index++

	return frame, nil
}

func (c *MockCamera) EnableAutofocus() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autofocusErr
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// CloseCount returns how many times Close has been called.
func (c *MockCamera) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount
}

// SetOpenError makes subsequent Open calls fail with err.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// SetReadError makes subsequent ReadJPEG calls fail with err.
func (c *MockCamera) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

// SetAutofocusError makes EnableAutofocus fail with err.
func (c *MockCamera) SetAutofocusError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autofocusErr = err
}

// SetFrames replaces the frame sequence.
func (c *MockCamera) SetFrames(frames [][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}
