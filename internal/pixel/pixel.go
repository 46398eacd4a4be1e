// Package pixel holds the 1x1 transparent PNG served at the
// tracking-pixel endpoint.
package pixel

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// PNG is a 1x1 fully transparent PNG, encoded once at package init.
// Compliance is pixel-dimension and transparency, not byte identity
// with any particular encoder's output.
var PNG []byte

func init() {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 0})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("pixel: encode transparent png: " + err.Error())
	}
	PNG = buf.Bytes()
}
