// Package raster rasterizes an svg document once and samples it in view box
// coordinates, for hosts that draw the graph themselves.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/recera/graphscope/pkg/viewport"
)

// ErrEmpty is returned for documents without a usable view box
var ErrEmpty = errors.New("raster: svg has no view box")

// ramp orders glyphs from dark to light
const ramp = "@%#*+=-:. "

// Image is a rasterized svg
type Image struct {
	RGBA    *image.RGBA
	ViewBox viewport.Size
	// Scale is raster pixels per view box unit
	Scale float64
}

// Rasterize renders data so that its longer view box side spans maxSide
// pixels
func Rasterize(data []byte, maxSide int) (*Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	vb := viewport.Size{Width: icon.ViewBox.W, Height: icon.ViewBox.H}
	if vb.Empty() {
		return nil, ErrEmpty
	}
	if maxSide <= 0 {
		maxSide = 512
	}

	scale := float64(maxSide) / math.Max(vb.Width, vb.Height)
	w := int(math.Ceil(vb.Width * scale))
	h := int(math.Ceil(vb.Height * scale))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	return &Image{RGBA: img, ViewBox: vb, Scale: scale}, nil
}

// At returns the color at a view box point. Points outside the image
// report false.
func (m *Image) At(p viewport.Point) (color.RGBA, bool) {
	x := int(math.Floor(p.X * m.Scale))
	y := int(math.Floor(p.Y * m.Scale))
	if !(image.Point{X: x, Y: y}).In(m.RGBA.Bounds()) {
		return color.RGBA{}, false
	}
	return m.RGBA.RGBAAt(x, y), true
}

// Luminance returns the perceived brightness in [0,1] at a view box point,
// compositing onto a white background. Outside the image it is 1.
func (m *Image) Luminance(p viewport.Point) float64 {
	c, ok := m.At(p)
	if !ok {
		return 1
	}
	// premultiplied alpha over white
	white := 255 - float64(c.A)
	r := (float64(c.R) + white) / 255
	g := (float64(c.G) + white) / 255
	b := (float64(c.B) + white) / 255
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Glyph maps a luminance to a character
func Glyph(lum float64) byte {
	lum = math.Max(0, math.Min(1, lum))
	return ramp[int(math.Round(lum*float64(len(ramp)-1)))]
}

// Sample draws an adapter's visible area as cols x rows glyphs. Each cell
// covers cellW x cellH container pixels; its center is mapped back to view
// box coordinates through the pan and real zoom.
func (m *Image) Sample(s viewport.State, cols, rows int) []string {
	if cols <= 0 || rows <= 0 || !s.Valid() {
		return nil
	}
	cellW := s.Container.Width / float64(cols)
	cellH := s.Container.Height / float64(rows)

	lines := make([]string, rows)
	buf := make([]byte, cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			px := viewport.Point{X: (float64(col) + 0.5) * cellW, Y: (float64(row) + 0.5) * cellH}
			content := px.Sub(s.Pan).Scale(1 / s.Zoom)
			buf[col] = Glyph(m.Luminance(content))
		}
		lines[row] = string(buf)
	}
	return lines
}
