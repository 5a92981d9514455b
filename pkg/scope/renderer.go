package scope

// Renderer writes scope geometry onto the overview's visual indicator
type Renderer interface {
	Render(r Rect)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(r Rect)

// Render implements Renderer
func (f RendererFunc) Render(r Rect) { f(r) }

// RecordingRenderer keeps every rendered rectangle
type RecordingRenderer struct {
	Rects []Rect
}

// Render implements Renderer
func (rr *RecordingRenderer) Render(r Rect) {
	rr.Rects = append(rr.Rects, r)
}

// Last returns the most recent rectangle, if any
func (rr *RecordingRenderer) Last() (Rect, bool) {
	if len(rr.Rects) == 0 {
		return Rect{}, false
	}
	return rr.Rects[len(rr.Rects)-1], true
}

// Reset forgets recorded rectangles
func (rr *RecordingRenderer) Reset() {
	rr.Rects = nil
}
