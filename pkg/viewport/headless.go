package viewport

import "math"

// Options configures a Headless adapter
type Options struct {
	MinZoom              float64 // default 1
	MaxZoom              float64 // default 100
	ZoomScaleSensitivity float64 // default 0.2

	Fit    bool // scale the view box to fit the container
	Center bool // center the view box in the container on reset

	// PanEnabled and ZoomEnabled gate user gestures (PanBy, ZoomAtPointBy).
	// Programmatic PanTo and ZoomTo always apply.
	PanEnabled  bool
	ZoomEnabled bool
}

// MainOptions returns the options used for the interactive main view
func MainOptions() Options {
	return Options{
		MinZoom:              1,
		MaxZoom:              100,
		ZoomScaleSensitivity: 0.2,
		Fit:                  true,
		Center:               true,
		PanEnabled:           true,
		ZoomEnabled:          true,
	}
}

// ThumbnailOptions returns the options used for the overview: fitted,
// centered and not user-controllable.
func ThumbnailOptions() Options {
	o := MainOptions()
	o.PanEnabled = false
	o.ZoomEnabled = false
	return o
}

func (o Options) withDefaults() Options {
	if o.MinZoom <= 0 {
		o.MinZoom = 1
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = 100
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = o.MinZoom
	}
	if o.ZoomScaleSensitivity <= 0 {
		o.ZoomScaleSensitivity = 0.2
	}
	return o
}

// Headless is an in-memory Adapter. It models the svg-pan-zoom behaviour the
// browser host relies on: the view box is fitted into the container (base
// zoom), the user zoom level multiplies it (real zoom), and every pan goes
// through the before-pan interceptor.
type Headless struct {
	viewBox   Size
	content   Size
	container Size
	measured  Size // container size picked up by the next Resize
	opts      Options

	baseZoom float64
	level    float64
	pan      Point

	beforePan BeforePanFunc
	onZoom    func(float64)
	onPan     func(Point)
	destroyed bool
}

// NewHeadless creates a headless adapter showing viewBox inside container,
// already reset (fitted and centered as configured).
func NewHeadless(viewBox, container Size, opts Options) *Headless {
	h := &Headless{
		viewBox:   viewBox,
		content:   viewBox,
		container: container,
		measured:  container,
		opts:      opts.withDefaults(),
		level:     1,
	}
	h.baseZoom = h.fitZoom()
	h.pan = h.centerPan()
	return h
}

// SetContentSize overrides the intrinsic content size (defaults to the view box)
func (h *Headless) SetContentSize(s Size) { h.content = s }

// ContentSize implements ContentSizer
func (h *Headless) ContentSize() Size { return h.content }

// Options returns the effective options
func (h *Headless) Options() Options { return h.opts }

// SetContainerSize records a new container size. It takes effect on Resize,
// like a DOM element whose new bounding box is only read on resize().
func (h *Headless) SetContainerSize(s Size) { h.measured = s }

// Pan implements Adapter
func (h *Headless) Pan() Point { return h.pan }

// Sizes implements Adapter
func (h *Headless) Sizes() Sizes {
	return Sizes{
		Width:    h.container.Width,
		Height:   h.container.Height,
		RealZoom: h.realZoom(),
		ViewBox:  h.viewBox,
	}
}

// Zoom returns the user zoom level (1 = fitted)
func (h *Headless) Zoom() float64 { return h.level }

// PanTo implements Adapter
func (h *Headless) PanTo(p Point) {
	if h.destroyed {
		return
	}
	if next, ok := h.intercept(p); ok {
		h.pan = next
		h.notifyPan()
	}
}

// PanBy pans by a user drag delta; ignored when panning is disabled
func (h *Headless) PanBy(d Point) {
	if !h.opts.PanEnabled {
		return
	}
	h.PanTo(h.pan.Add(d))
}

// ZoomAtPointBy implements Zoomer. The content point under p stays under p
// unless the interceptor moves it.
func (h *Headless) ZoomAtPointBy(factor float64, p Point) {
	if h.destroyed || !h.opts.ZoomEnabled || !(factor > 0) {
		return
	}
	h.zoomAt(h.level*factor, p)
}

// ZoomTo sets the zoom level around the container center
func (h *Headless) ZoomTo(level float64) {
	if h.destroyed || !(level > 0) {
		return
	}
	h.zoomAt(level, Point{h.container.Width / 2, h.container.Height / 2})
}

func (h *Headless) zoomAt(level float64, p Point) {
	level = math.Max(h.opts.MinZoom, math.Min(level, h.opts.MaxZoom))
	if level == h.level {
		return
	}
	old := h.realZoom()
	content := p.Sub(h.pan).Scale(1 / old)

	h.level = level
	proposed := p.Sub(content.Scale(h.realZoom()))
	next, moved := h.intercept(proposed)
	h.pan = next

	// notify only once both level and pan are settled
	if h.onZoom != nil {
		h.onZoom(h.realZoom())
	}
	if moved {
		h.notifyPan()
	}
}

// Resize implements Adapter: it picks up the measured container size and
// refits the base zoom. Pan and level are kept until Reset.
func (h *Headless) Resize() {
	if h.destroyed {
		return
	}
	h.container = h.measured
	h.baseZoom = h.fitZoom()
}

// Reset implements Adapter: zoom level 1 and the initial (centered) pan
func (h *Headless) Reset() {
	if h.destroyed {
		return
	}
	h.level = 1
	next, moved := h.intercept(h.centerPan())
	h.pan = next
	if h.onZoom != nil {
		h.onZoom(h.realZoom())
	}
	if moved {
		h.notifyPan()
	}
}

// SetOnZoom implements Adapter
func (h *Headless) SetOnZoom(fn func(float64)) { h.onZoom = fn }

// SetOnPan implements Adapter
func (h *Headless) SetOnPan(fn func(Point)) { h.onPan = fn }

// SetBeforePan implements Adapter
func (h *Headless) SetBeforePan(fn BeforePanFunc) { h.beforePan = fn }

// Destroy implements Adapter. Later calls are ignored.
func (h *Headless) Destroy() {
	h.destroyed = true
	h.beforePan = nil
	h.onZoom = nil
	h.onPan = nil
}

// Destroyed reports whether Destroy was called
func (h *Headless) Destroyed() bool { return h.destroyed }

// ContainerToContent maps a container point to view box coordinates
func (h *Headless) ContainerToContent(p Point) Point {
	return p.Sub(h.pan).Scale(1 / h.realZoom())
}

func (h *Headless) intercept(p Point) (Point, bool) {
	if h.beforePan != nil {
		p = h.beforePan(h.pan, p)
	}
	return p, p != h.pan
}

func (h *Headless) notifyPan() {
	if h.onPan != nil {
		h.onPan(h.pan)
	}
}

func (h *Headless) realZoom() float64 { return h.baseZoom * h.level }

func (h *Headless) fitZoom() float64 {
	if !h.opts.Fit || h.viewBox.Empty() || h.container.Empty() {
		return 1
	}
	return math.Min(h.container.Width/h.viewBox.Width, h.container.Height/h.viewBox.Height)
}

func (h *Headless) centerPan() Point {
	if !h.opts.Center {
		return Point{}
	}
	scaled := h.viewBox.Scale(h.realZoom())
	return Point{
		X: (h.container.Width - scaled.Width) / 2,
		Y: (h.container.Height - scaled.Height) / 2,
	}
}
