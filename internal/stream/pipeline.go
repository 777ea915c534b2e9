package stream

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yutapi3/picamstream/internal/capture"
)

// State represents the capture loop lifecycle state.
type State string

const (
	// StateNotStarted means the capture loop has not been started yet.
	StateNotStarted State = "not_started"
	// StateRunning means the loop is publishing frames.
	StateRunning State = "running"
	// StateFailed means the loop exited on an unrecoverable error.
	StateFailed State = "failed"
	// StateStopped means the loop observed the stop signal and exited.
	StateStopped State = "stopped"
)

// EventRecorder receives operational events from the pipeline.
// Implementations must be safe for concurrent use. A nil recorder is allowed.
type EventRecorder interface {
	Record(kind, detail string)
}

// Pipeline runs the background capture loop: it owns the camera device for
// the whole run, reads frames at a fixed cadence and publishes them into the
// FrameStore. Errors never propagate out of the loop; they degrade the
// pipeline to Failed and viewers fall back to the static image.
type Pipeline struct {
	camera   capture.Camera
	frames   *FrameStore
	interval time.Duration
	events   EventRecorder

	mu    sync.Mutex
	state State

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewPipeline creates a Pipeline publishing frames from camera into frames
// at the given inter-frame interval. events may be nil.
func NewPipeline(camera capture.Camera, frames *FrameStore, interval time.Duration, events EventRecorder) *Pipeline {
	return &Pipeline{
		camera:   camera,
		frames:   frames,
		interval: interval,
		events:   events,
		state:    StateNotStarted,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start launches the capture loop in a background goroutine and returns
// immediately. The loop is not restartable; Start must be called once.
func (p *Pipeline) Start() {
	go p.run()
}

// Stop signals the capture loop to exit and waits for it, bounded by timeout.
// It returns true if the loop exited within the timeout. Safe to call more
// than once; the stop signal is one-shot.
func (p *Pipeline) Stop(timeout time.Duration) bool {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})

	select {
	case <-p.doneCh:
		return true
	case <-time.After(timeout):
		log.Printf("capture loop did not stop within %v, proceeding with shutdown", timeout)
		return false
	}
}

// Done returns a channel closed when the capture loop has exited.
func (p *Pipeline) Done() <-chan struct{} {
	return p.doneCh
}

// run is the capture loop body. It owns the camera handle from Open to the
// deferred Close and never lets an error escape.
func (p *Pipeline) run() {
	defer close(p.doneCh)

	if err := p.camera.Open(); err != nil {
		log.Printf("failed to open camera: %v", err)
		p.setState(StateFailed, fmt.Sprintf("camera open failed: %v", err))
		return
	}
	defer func() {
		if err := p.camera.Close(); err != nil {
			log.Printf("error closing camera: %v", err)
		}
	}()

	// Continuous autofocus is best-effort; many camera modules lack it.
	if err := p.camera.EnableAutofocus(); err != nil {
		log.Printf("autofocus not enabled: %v", err)
	}

	p.setState(StateRunning, "camera opened")
	log.Println("capture loop started")

	for {
		select {
		case <-p.stopCh:
			p.setState(StateStopped, "stop signal observed")
			log.Println("capture loop stopped")
			return
		default:
		}

		frame, err := p.camera.ReadJPEG()
		if err != nil {
			log.Printf("error capturing frame: %v", err)
			p.setState(StateFailed, fmt.Sprintf("capture failed: %v", err))
			return
		}

		p.frames.Publish(frame)

		select {
		case <-p.stopCh:
			p.setState(StateStopped, "stop signal observed")
			log.Println("capture loop stopped")
			return
		case <-time.After(p.interval):
		}
	}
}

// setState records a lifecycle transition.
func (p *Pipeline) setState(state State, detail string) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	if p.events != nil {
		p.events.Record("capture_state", fmt.Sprintf("%s: %s", state, detail))
	}
}
