//go:build js && wasm
// +build js,wasm

// Package dom binds the session to the browser: svg-pan-zoom instances,
// the scope rectangle element, body-level pointer capture, object URLs and
// the <object> elements the graph is decoded into.
package dom

import (
	"syscall/js"

	"github.com/recera/graphscope/pkg/viewport"
)

// PanZoom adapts an svg-pan-zoom instance to viewport.Adapter. Callbacks are
// registered once at construction and dispatch to the current Go handlers.
type PanZoom struct {
	inst      js.Value
	funcs     []js.Func
	beforePan viewport.BeforePanFunc
	onZoom    func(float64)
	onPan     func(viewport.Point)
	destroyed bool
}

// NewPanZoom creates an svg-pan-zoom instance on svg
func NewPanZoom(svg js.Value, o viewport.Options) *PanZoom {
	pz := &PanZoom{}

	before := pz.fn(func(args []js.Value) interface{} {
		if pz.beforePan == nil || len(args) < 2 {
			return nil
		}
		next := pz.beforePan(point(args[0]), point(args[1]))
		return map[string]interface{}{"x": next.X, "y": next.Y}
	})
	onZoom := pz.fn(func(args []js.Value) interface{} {
		if pz.onZoom != nil && len(args) > 0 {
			pz.onZoom(args[0].Float())
		}
		return nil
	})
	onPan := pz.fn(func(args []js.Value) interface{} {
		if pz.onPan != nil && len(args) > 0 {
			pz.onPan(point(args[0]))
		}
		return nil
	})

	pz.inst = js.Global().Call("svgPanZoom", svg, map[string]interface{}{
		"panEnabled":            o.PanEnabled,
		"zoomEnabled":           o.ZoomEnabled,
		"dblClickZoomEnabled":   o.ZoomEnabled,
		"mouseWheelZoomEnabled": o.ZoomEnabled,
		"controlIconsEnabled":   o.ZoomEnabled,
		"zoomScaleSensitivity":  o.ZoomScaleSensitivity,
		"minZoom":               o.MinZoom,
		"maxZoom":               o.MaxZoom,
		"fit":                   o.Fit,
		"center":                o.Center,
		"contain":               false,
		"beforePan":             before,
		"onZoom":                onZoom,
		"onPan":                 onPan,
	})
	return pz
}

func (pz *PanZoom) fn(f func(args []js.Value) interface{}) js.Func {
	jf := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if pz.destroyed {
			return nil
		}
		return f(args)
	})
	pz.funcs = append(pz.funcs, jf)
	return jf
}

func point(v js.Value) viewport.Point {
	return viewport.Point{X: v.Get("x").Float(), Y: v.Get("y").Float()}
}

// Pan implements viewport.Adapter
func (pz *PanZoom) Pan() viewport.Point {
	if pz.destroyed {
		return viewport.Point{}
	}
	return point(pz.inst.Call("getPan"))
}

// Sizes implements viewport.Adapter
func (pz *PanZoom) Sizes() viewport.Sizes {
	if pz.destroyed {
		return viewport.Sizes{}
	}
	s := pz.inst.Call("getSizes")
	vb := s.Get("viewBox")
	return viewport.Sizes{
		Width:    s.Get("width").Float(),
		Height:   s.Get("height").Float(),
		RealZoom: s.Get("realZoom").Float(),
		ViewBox:  viewport.Size{Width: vb.Get("width").Float(), Height: vb.Get("height").Float()},
	}
}

// PanTo implements viewport.Adapter
func (pz *PanZoom) PanTo(p viewport.Point) {
	if pz.destroyed {
		return
	}
	pz.inst.Call("pan", map[string]interface{}{"x": p.X, "y": p.Y})
}

// ZoomAtPointBy implements viewport.Zoomer
func (pz *PanZoom) ZoomAtPointBy(factor float64, p viewport.Point) {
	if pz.destroyed {
		return
	}
	pz.inst.Call("zoomAtPointBy", factor, map[string]interface{}{"x": p.X, "y": p.Y})
}

// Resize implements viewport.Adapter
func (pz *PanZoom) Resize() {
	if !pz.destroyed {
		pz.inst.Call("resize")
	}
}

// Reset implements viewport.Adapter
func (pz *PanZoom) Reset() {
	if !pz.destroyed {
		pz.inst.Call("reset")
	}
}

// SetOnZoom implements viewport.Adapter
func (pz *PanZoom) SetOnZoom(fn func(float64)) { pz.onZoom = fn }

// SetOnPan implements viewport.Adapter
func (pz *PanZoom) SetOnPan(fn func(viewport.Point)) { pz.onPan = fn }

// SetBeforePan implements viewport.Adapter
func (pz *PanZoom) SetBeforePan(fn viewport.BeforePanFunc) { pz.beforePan = fn }

// Destroy implements viewport.Adapter
func (pz *PanZoom) Destroy() {
	if pz.destroyed {
		return
	}
	pz.destroyed = true
	pz.inst.Call("destroy")
	for _, f := range pz.funcs {
		f.Release()
	}
	pz.funcs = nil
	pz.beforePan = nil
	pz.onZoom = nil
	pz.onPan = nil
}
