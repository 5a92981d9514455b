//go:build js && wasm
// +build js,wasm

package dom

import (
	"syscall/js"

	"github.com/recera/graphscope/pkg/capture"
)

// BodyInput captures pointer input at document level while a drag is in
// progress. The body stops receiving pointer events so nothing under the
// pointer reacts, and listeners on the document's capture phase route every
// move and the final release to the handler.
type BodyInput struct {
	origin   js.Value
	document js.Value
	move     js.Func
	up       js.Func
	active   bool
	post     func(fn func())
}

// NewBodyInput reports pointer positions relative to origin's bounding box
func NewBodyInput(origin js.Value) *BodyInput {
	return &BodyInput{
		origin:   origin,
		document: js.Global().Get("document"),
	}
}

// SetPoster routes captured events through post
func (b *BodyInput) SetPoster(post func(fn func())) {
	b.post = post
}

func (b *BodyInput) run(fn func()) {
	if b.post != nil {
		b.post(fn)
		return
	}
	fn()
}

var _ capture.GlobalInput = (*BodyInput)(nil)

var captureMode = map[string]interface{}{"capture": true}

// Grab implements capture.GlobalInput
func (b *BodyInput) Grab(h capture.Handler) {
	if b.active {
		b.Release()
	}
	b.active = true
	b.document.Get("body").Get("style").Set("pointerEvents", "none")

	b.move = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		e := args[0]
		e.Call("stopPropagation")
		ev := PointerFromEvent(e, b.origin)
		b.run(func() { h.Move(ev) })
		return nil
	})
	b.up = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		e := args[0]
		e.Call("stopPropagation")
		ev := PointerFromEvent(e, b.origin)
		b.run(func() { h.Up(ev) })
		return nil
	})
	b.document.Call("addEventListener", "mousemove", b.move, captureMode)
	b.document.Call("addEventListener", "mouseup", b.up, captureMode)
}

// Release implements capture.GlobalInput
func (b *BodyInput) Release() {
	if !b.active {
		return
	}
	b.active = false
	b.document.Get("body").Get("style").Set("pointerEvents", "auto")
	b.document.Call("removeEventListener", "mousemove", b.move, captureMode)
	b.document.Call("removeEventListener", "mouseup", b.up, captureMode)
	b.move.Release()
	b.up.Release()
}

// PointerFromEvent converts a mouse or pointer event to a pointer position
// relative to origin
func PointerFromEvent(e, origin js.Value) capture.PointerEvent {
	rect := origin.Call("getBoundingClientRect")
	ev := capture.PointerEvent{
		X:       e.Get("clientX").Float() - rect.Get("left").Float(),
		Y:       e.Get("clientY").Float() - rect.Get("top").Float(),
		Buttons: e.Get("buttons").Int(),
	}
	if id := e.Get("pointerId"); id.Type() == js.TypeNumber {
		ev.ID = id.Int()
	}
	return ev
}
