//go:build js && wasm
// +build js,wasm

package dom

import (
	"fmt"
	"syscall/js"

	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/session"
	"github.com/recera/graphscope/pkg/surface"
	"github.com/recera/graphscope/pkg/viewport"
)

// ObjectLoader decodes handles by pointing an <object> element at them and
// binding svg-pan-zoom to the loaded document
type ObjectLoader struct {
	objects map[session.Role]js.Value
	options map[session.Role]viewport.Options
	pending map[session.Role]js.Func
	// post runs fn on the session goroutine; nil runs it inline
	post func(fn func())
}

// NewObjectLoader binds the main and thumbnail <object> elements
func NewObjectLoader(mainID, thumbID string) *ObjectLoader {
	l := &ObjectLoader{
		objects: map[session.Role]js.Value{
			session.RoleMain:  byID(mainID),
			session.RoleThumb: byID(thumbID),
		},
		options: map[session.Role]viewport.Options{
			session.RoleMain:  viewport.MainOptions(),
			session.RoleThumb: viewport.ThumbnailOptions(),
		},
		pending: make(map[session.Role]js.Func),
	}
	for _, obj := range l.objects {
		blockWheel(obj)
	}
	return l
}

// SetPoster routes load callbacks through post
func (l *ObjectLoader) SetPoster(post func(fn func())) {
	l.post = post
}

// Object returns the <object> element for role
func (l *ObjectLoader) Object(role session.Role) js.Value {
	return l.objects[role]
}

// Load implements session.SurfaceLoader
func (l *ObjectLoader) Load(role session.Role, h payload.Handle, done func(viewport.Adapter, error)) {
	obj := l.objects[role]
	if prev, ok := l.pending[role]; ok {
		obj.Call("removeEventListener", "load", prev)
		prev.Release()
		delete(l.pending, role)
	}

	var onLoad js.Func
	onLoad = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		obj.Call("removeEventListener", "load", onLoad)
		delete(l.pending, role)
		onLoad.Release()

		a, err := l.bind(role, obj)
		l.run(func() { done(a, err) })
		return nil
	})
	l.pending[role] = onLoad
	obj.Call("addEventListener", "load", onLoad)
	obj.Set("data", string(h))
}

func (l *ObjectLoader) bind(role session.Role, obj js.Value) (viewport.Adapter, error) {
	doc := obj.Get("contentDocument")
	if doc.IsNull() || doc.IsUndefined() {
		return nil, fmt.Errorf("%w: %s object has no document", surface.ErrNoSurface, role)
	}
	svg := doc.Call("querySelector", "svg")
	if svg.IsNull() {
		return nil, fmt.Errorf("%w: %s object has no svg root", surface.ErrNoSurface, role)
	}
	blockWheel(svg)
	return NewPanZoom(svg, l.options[role]), nil
}

func (l *ObjectLoader) run(fn func()) {
	if l.post != nil {
		l.post(fn)
		return
	}
	fn()
}

var wheelBlocker = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
	args[0].Call("preventDefault")
	return nil
})

// blockWheel keeps wheel events over el from scrolling the page
func blockWheel(el js.Value) {
	el.Call("addEventListener", "wheel", wheelBlocker, map[string]interface{}{"passive": false})
}
