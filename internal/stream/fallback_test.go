package stream

import (
	"bytes"
	"image/jpeg"
	"testing"
)

func TestRenderFallback(t *testing.T) {
	data, err := renderFallback(640, 480, "Cannot connect to camera")
	if err != nil {
		t.Fatalf("renderFallback() returned error: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("fallback output is not valid JPEG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 640 || bounds.Dy() != 480 {
		t.Errorf("fallback image size = %dx%d, want 640x480", bounds.Dx(), bounds.Dy())
	}

	// Background is black.
	r, g, b, _ := img.At(0, 0).RGBA()
	if r > 0x0fff || g > 0x0fff || b > 0x0fff {
		t.Errorf("corner pixel not black: r=%d g=%d b=%d", r, g, b)
	}

	// The caption leaves light pixels around its draw position.
	found := false
	for y := fallbackTextPos.Y - 13; y <= fallbackTextPos.Y && !found; y++ {
		for x := fallbackTextPos.X; x < fallbackTextPos.X+200; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r > 0x8000 && g > 0x8000 && b > 0x8000 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("no caption pixels found on fallback image")
	}
}

func TestRenderFallback_InvalidSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{name: "zero width", width: 0, height: 480},
		{name: "negative height", width: 640, height: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := renderFallback(tt.width, tt.height, "x"); err == nil {
				t.Error("expected error for invalid size")
			}
		})
	}
}
