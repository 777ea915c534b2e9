// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// ErrAutofocusUnsupported is returned when the device does not accept the
// continuous autofocus control. Callers treat this as best-effort.
var ErrAutofocusUnsupported = errors.New("autofocus not supported by device")

// Camera defines the interface for camera capture implementations.
// ReadJPEG returns one JPEG-encoded frame; the returned slice is owned by the
// caller and never mutated afterwards.
type Camera interface {
	Open() error
	Close() error
	ReadJPEG() ([]byte, error)
	EnableAutofocus() error
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	deviceID int
	width    int
	height   int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
}

// NewCamera creates a new Camera for the given device ID and resolution.
func NewCamera(deviceID, width, height int) Camera {
	return &cameraImpl{
		deviceID: deviceID,
		width:    width,
		height:   height,
	}
}

// Open opens the camera device and applies the configured resolution.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return fmt.Errorf("failed to open camera device %d: %w", c.deviceID, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.height))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
// It is safe to call more than once.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// EnableAutofocus turns on continuous autofocus where the device supports it.
// Returns ErrAutofocusUnsupported when the control did not take effect.
func (c *cameraImpl) EnableAutofocus() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return ErrCameraNotOpen
	}

	c.capture.Set(gocv.VideoCaptureAutoFocus, 1)
	if c.capture.Get(gocv.VideoCaptureAutoFocus) != 1 {
		return ErrAutofocusUnsupported
	}

	return nil
}

// ReadJPEG reads a single frame from the camera and encodes it as JPEG.
func (c *cameraImpl) ReadJPEG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := c.capture.Read(&mat); !ok {
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		return nil, errors.New("captured frame is empty")
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	// The buffer is invalidated by Close, so hand the caller a copy.
	frame := make([]byte, buf.Len())
	copy(frame, buf.GetBytes())

	return frame, nil
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
