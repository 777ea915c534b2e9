package stream

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// fallbackTextPos is where the caption is drawn on the fallback image.
var fallbackTextPos = image.Point{X: 100, Y: 240}

// renderFallback produces a JPEG-encoded solid-black image with the caption
// drawn in white. It deliberately avoids the camera stack: the fallback is
// served precisely when that stack is broken, so it only depends on pure-Go
// image and font packages.
func renderFallback(width, height int, caption string) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid fallback image size: %dx%d", width, height)
	}

	// Zero-valued RGBA pixels are fully transparent; fill alpha so the
	// background is opaque black before the caption is drawn over it.
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(fallbackTextPos.X, fallbackTextPos.Y),
	}
	d.DrawString(caption)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode fallback image: %w", err)
	}

	return buf.Bytes(), nil
}
