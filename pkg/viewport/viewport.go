// Package viewport defines the pan/zoom capability the scope engine drives,
// the pan clamping policy, and a headless implementation of the capability.
package viewport

import "math"

// Point is an offset or position in container pixels
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p+q
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p*k
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Size is a width/height pair
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Empty reports whether either dimension is not positive
func (s Size) Empty() bool { return !(s.Width > 0) || !(s.Height > 0) }

// Scale returns s*k
func (s Size) Scale(k float64) Size { return Size{s.Width * k, s.Height * k} }

// Sizes mirrors the adapter's getSizes() report: the container size, the
// content-to-container scale and the unscaled view box.
type Sizes struct {
	Width    float64
	Height   float64
	RealZoom float64
	ViewBox  Size
}

// BeforePanFunc intercepts a proposed pan and returns the pan to apply
type BeforePanFunc func(old, proposed Point) Point

// Adapter is the pan/zoom primitive owning one image surface.
//
// All methods are called from a single goroutine. Implementations invoke the
// before-pan interceptor on every pan application, including pans caused by
// zooming, and deliver notifications in gesture order.
type Adapter interface {
	Pan() Point
	Sizes() Sizes
	PanTo(p Point)
	Resize()
	Reset()
	SetOnZoom(fn func(zoom float64))
	SetOnPan(fn func(pan Point))
	SetBeforePan(fn BeforePanFunc)
	Destroy()
}

// Zoomer is implemented by adapters that can zoom around a container point
type Zoomer interface {
	ZoomAtPointBy(factor float64, p Point)
}

// ContentSizer is implemented by adapters whose intrinsic content size
// differs from their view box
type ContentSizer interface {
	ContentSize() Size
}

// State is a snapshot of one adapter's geometry
type State struct {
	Pan       Point
	Zoom      float64
	Content   Size
	ViewBox   Size
	Container Size
}

// StateOf snapshots an adapter
func StateOf(a Adapter) State {
	sizes := a.Sizes()
	st := State{
		Pan:       a.Pan(),
		Zoom:      sizes.RealZoom,
		Content:   sizes.ViewBox,
		ViewBox:   sizes.ViewBox,
		Container: Size{Width: sizes.Width, Height: sizes.Height},
	}
	if c, ok := a.(ContentSizer); ok {
		st.Content = c.ContentSize()
	}
	return st
}

// Valid reports whether the state can take part in coordinate math
func (s State) Valid() bool {
	return s.Zoom > 0 && !math.IsInf(s.Zoom, 0)
}

// WheelFactor converts a wheel delta into a zoom factor. Negative deltas
// (wheel away from the user) zoom in.
func WheelFactor(delta, sensitivity float64) float64 {
	switch {
	case delta < 0:
		return 1 + sensitivity
	case delta > 0:
		return 1 / (1 + sensitivity)
	default:
		return 1
	}
}
