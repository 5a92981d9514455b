// Package scope maps the main view's pan/zoom onto the thumbnail's scope
// rectangle and back.
//
// Both directions are pure functions of the two adapters' current state. The
// forward mapping is an approximation: the main and thumbnail views may have
// been fitted to their containers independently, so the rectangle is derived
// from the zoom ratio rather than from the content bounds.
package scope

import (
	"math"

	"github.com/recera/graphscope/pkg/viewport"
)

// Rect is the scope rectangle in thumbnail container pixels
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Center returns the rectangle's center point
func (r Rect) Center() viewport.Point {
	return viewport.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Finite reports whether every field is a finite number
func (r Rect) Finite() bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

const (
	// DefaultInset keeps the rectangle's stroke inside the thumbnail
	DefaultInset = 1.0
	// DefaultMinSize keeps the rectangle visible at extreme zoom-out
	DefaultMinSize = 0.1
)

// Engine converts between main-view pans and scope rectangles
type Engine struct {
	Inset   float64
	MinSize float64
}

// NewEngine returns an engine with the default inset and minimum size
func NewEngine() *Engine {
	return &Engine{Inset: DefaultInset, MinSize: DefaultMinSize}
}

// Raw returns the unclipped scope rectangle:
//
//	r = thumb.zoom / main.zoom
//	x = thumb.pan.x - main.pan.x*r
//	w = main.container.width*r
func (e *Engine) Raw(main, thumb viewport.State) Rect {
	r := thumb.Zoom / main.Zoom
	return Rect{
		X:      thumb.Pan.X - main.Pan.X*r,
		Y:      thumb.Pan.Y - main.Pan.Y*r,
		Width:  main.Container.Width * r,
		Height: main.Container.Height * r,
	}
}

// Compute returns the scope rectangle clipped to the thumbnail container and
// shrunk by the inset. The result never leaves [0, thumb.Container].
func (e *Engine) Compute(main, thumb viewport.State) Rect {
	raw := e.Raw(main, thumb)
	if !raw.Finite() {
		// left for the caller to drop; clipping would hide the bad frame
		return raw
	}
	x, w := e.clip(raw.X, raw.Width, thumb.Container.Width)
	y, h := e.clip(raw.Y, raw.Height, thumb.Container.Height)
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// clip handles one axis of Compute
func (e *Engine) clip(pos, length, limit float64) (float64, float64) {
	pos = math.Max(0, math.Min(pos, limit))
	length = math.Min(length, limit)
	length = math.Min(length, limit-pos)

	pos += e.Inset
	length -= 2 * e.Inset
	if length < e.MinSize {
		length = e.MinSize
	}
	length = math.Min(length, limit)
	if pos+length > limit {
		pos = limit - length
	}
	return math.Max(0, pos), length
}

// PointerToMainPan returns the main-view pan that centers the scope
// rectangle on p, a pointer position in thumbnail container pixels. The
// offset from the pointer to the scope origin is half the unclipped scope
// size, so the result depends only on p and the zoom levels, never on how
// the previous frame was clipped. This inverts the forward mapping's linear
// term: pan = -(origin - thumb.pan) * main.zoom/thumb.zoom.
func (e *Engine) PointerToMainPan(p viewport.Point, thumb, main viewport.State) viewport.Point {
	p.X = math.Min(math.Max(0, p.X), thumb.Container.Width)
	p.Y = math.Min(math.Max(0, p.Y), thumb.Container.Height)

	size := main.Container.Scale(thumb.Zoom / main.Zoom)
	origin := viewport.Point{
		X: p.X - size.Width/2,
		Y: p.Y - size.Height/2,
	}
	r := main.Zoom / thumb.Zoom
	return origin.Sub(thumb.Pan).Scale(-r)
}

// ThumbToMain maps a thumbnail container point to the corresponding main
// container point by relative position. Used to forward wheel zooming.
func ThumbToMain(p viewport.Point, thumb, main viewport.State) viewport.Point {
	if thumb.Container.Empty() {
		return viewport.Point{}
	}
	return viewport.Point{
		X: main.Container.Width * p.X / thumb.Container.Width,
		Y: main.Container.Height * p.Y / thumb.Container.Height,
	}
}
