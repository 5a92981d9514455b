//go:build js && wasm
// +build js,wasm

package dom

import (
	"strconv"
	"syscall/js"

	"github.com/recera/graphscope/pkg/scope"
)

// ScopeElement renders the scope rectangle into an svg <rect>
type ScopeElement struct {
	el js.Value
}

// NewScopeElement wraps the element with the given id
func NewScopeElement(id string) *ScopeElement {
	return &ScopeElement{el: byID(id)}
}

// Render implements scope.Renderer
func (s *ScopeElement) Render(r scope.Rect) {
	s.el.Call("setAttribute", "x", format(r.X))
	s.el.Call("setAttribute", "y", format(r.Y))
	s.el.Call("setAttribute", "width", format(r.Width))
	s.el.Call("setAttribute", "height", format(r.Height))
}

// Element returns the underlying element
func (s *ScopeElement) Element() js.Value { return s.el }

// ScopeContainer is the svg element hosting the scope rectangle
type ScopeContainer struct {
	el js.Value
}

// NewScopeContainer wraps the element with the given id
func NewScopeContainer(id string) *ScopeContainer {
	return &ScopeContainer{el: byID(id)}
}

// SetWidth implements session.ScopeContainer
func (c *ScopeContainer) SetWidth(w float64) {
	c.el.Call("setAttribute", "width", format(w))
}

// Element returns the underlying element
func (c *ScopeContainer) Element() js.Value { return c.el }

func byID(id string) js.Value {
	return js.Global().Get("document").Call("getElementById", id)
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
