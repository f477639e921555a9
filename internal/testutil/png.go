// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
)

// WritePNG writes a w x h gradient PNG to path.
// The test fails immediately if the image cannot be written.
func WritePNG(t testing.TB, path string, w, h int) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / max(w, 1)), G: uint8(y * 255 / max(h, 1)), B: 0x80, A: 0xFF})
		}
	}
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		t.Fatalf("failed to write PNG %s: %v", path, err)
	}
}
