package stream

import (
	"bytes"
	"log"
	"time"
)

// Multipart framing for the MJPEG stream. Each chunk is one JPEG image.
var (
	chunkHeader  = []byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n")
	chunkTrailer = []byte("\r\n")
)

// GeneratorConfig controls a Generator's timing and fallback rendering.
type GeneratorConfig struct {
	// FrameInterval is the delay between emitted chunks (~33ms at 30fps).
	FrameInterval time.Duration
	// PollInterval is the delay between reads while waiting for the first frame.
	PollInterval time.Duration
	// MaxPolls is how many empty polls are tolerated before the fallback
	// image is served (20 polls at 500ms gives a 10 second window).
	MaxPolls int
	// FallbackWidth/FallbackHeight size the fallback image.
	FallbackWidth  int
	FallbackHeight int
	// FallbackCaption is drawn on the fallback image.
	FallbackCaption string
}

// DefaultGeneratorConfig returns the production timing values.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		FrameInterval:   time.Second / 30,
		PollInterval:    500 * time.Millisecond,
		MaxPolls:        20,
		FallbackWidth:   640,
		FallbackHeight:  480,
		FallbackCaption: "Cannot connect to camera",
	}
}

// Generator produces one viewer's MJPEG sequence by repeatedly reading the
// FrameStore. Generators are independent: each viewer connection gets its
// own and they share nothing but the store.
//
// A Generator is not safe for concurrent use and is not restartable. Once
// Next returns false the sequence has ended (fallback served, or fallback
// rendering failed).
type Generator struct {
	frames *FrameStore
	cfg    GeneratorConfig

	started bool
	emitted bool
	done    bool
}

// NewGenerator creates a Generator reading from frames.
func NewGenerator(frames *FrameStore, cfg GeneratorConfig) *Generator {
	return &Generator{
		frames: frames,
		cfg:    cfg,
	}
}

// Next returns the next multipart chunk of the sequence. It blocks for the
// configured intervals between frames. The second return value is false when
// the sequence has ended; callers must stop pulling at that point.
//
// There is no cancellation input: the HTTP layer simply stops calling Next
// when the viewer disconnects, and the generator holds no resources that
// outlive a call.
func (g *Generator) Next() ([]byte, bool) {
	if g.done {
		return nil, false
	}

	if !g.started {
		return g.awaitFirstFrame()
	}

	return g.nextFrame()
}

// awaitFirstFrame polls the store during the startup window. If no frame
// arrives it serves the static fallback image exactly once and ends the
// sequence.
func (g *Generator) awaitFirstFrame() ([]byte, bool) {
	if frame, ok := g.frames.Read(); ok {
		g.started = true
		g.emitted = true
		return buildChunk(frame), true
	}

	for i := 0; i < g.cfg.MaxPolls; i++ {
		time.Sleep(g.cfg.PollInterval)

		if frame, ok := g.frames.Read(); ok {
			g.started = true
			g.emitted = true
			return buildChunk(frame), true
		}
	}

	// Still nothing after the whole window: the camera never became ready.
	g.done = true

	fallback, err := renderFallback(g.cfg.FallbackWidth, g.cfg.FallbackHeight, g.cfg.FallbackCaption)
	if err != nil {
		log.Printf("failed to render fallback image: %v", err)
		return nil, false
	}

	return buildChunk(fallback), true
}

// nextFrame emits the current frame in steady state, pacing itself by the
// frame interval. An empty read is a startup race artifact and is skipped
// silently rather than emitting a malformed chunk.
func (g *Generator) nextFrame() ([]byte, bool) {
	for {
		if g.emitted {
			time.Sleep(g.cfg.FrameInterval)
		}

		frame, ok := g.frames.Read()
		if !ok {
			continue
		}

		g.emitted = true
		return buildChunk(frame), true
	}
}

// buildChunk wraps one JPEG frame as a multipart chunk:
// boundary line, Content-Type header, blank line, JPEG bytes, CRLF.
func buildChunk(frame []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(chunkHeader) + len(frame) + len(chunkTrailer))
	buf.Write(chunkHeader)
	buf.Write(frame)
	buf.Write(chunkTrailer)
	return buf.Bytes()
}
