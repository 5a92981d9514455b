package viewport

import (
	"fmt"
	"math"
	"strings"
)

// Extent selects which size bounds panning
type Extent int

const (
	// ExtentViewBox bounds panning by viewBox*zoom
	ExtentViewBox Extent = iota
	// ExtentContent bounds panning by the intrinsic content size*zoom
	ExtentContent
)

func (e Extent) String() string {
	switch e {
	case ExtentViewBox:
		return "viewbox"
	case ExtentContent:
		return "content"
	default:
		return fmt.Sprintf("Extent(%d)", int(e))
	}
}

// ParseExtent parses "viewbox" or "content"
func ParseExtent(s string) (Extent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "viewbox":
		return ExtentViewBox, nil
	case "content":
		return ExtentContent, nil
	default:
		return 0, fmt.Errorf("unknown clamp extent %q", s)
	}
}

// Between clamps v into the interval spanned by a and b, whichever order
// they come in.
func Between(v, a, b float64) float64 {
	if a < b {
		return math.Max(a, math.Min(v, b))
	}
	return math.Max(b, math.Min(v, a))
}

// ClampPolicy bounds pans so the content can never be panned out of its
// container. When the content is larger than the container on an axis it
// keeps covering the container; when it is smaller it stays inside.
type ClampPolicy struct {
	Extent Extent
}

// Clamp returns the closest allowed pan to proposed
func (c ClampPolicy) Clamp(proposed Point, s State) Point {
	extent := s.ViewBox
	if c.Extent == ExtentContent {
		extent = s.Content
	}
	scaled := extent.Scale(s.Zoom)
	return Point{
		X: Between(proposed.X, 0, s.Container.Width-scaled.Width),
		Y: Between(proposed.Y, 0, s.Container.Height-scaled.Height),
	}
}

// Interceptor returns a before-pan hook clamping against a's live geometry
func (c ClampPolicy) Interceptor(a Adapter) BeforePanFunc {
	return func(_, proposed Point) Point {
		s := StateOf(a)
		if !s.Valid() {
			return proposed
		}
		return c.Clamp(proposed, s)
	}
}
