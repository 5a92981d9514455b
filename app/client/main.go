//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"syscall/js"

	"github.com/recera/graphscope/pkg/debug"
	"github.com/recera/graphscope/pkg/dom"
	"github.com/recera/graphscope/pkg/eventloop"
	"github.com/recera/graphscope/pkg/live"
	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/session"
	"github.com/recera/graphscope/pkg/viewport"
)

var (
	document js.Value
	window   js.Value
	console  js.Value
)

type app struct {
	loop    *eventloop.Loop
	sess    *session.Session
	loader  *dom.ObjectLoader
	input   *dom.BodyInput
	scopeEl *dom.ScopeContainer
	funcs   []js.Func
}

func main() {
	document = js.Global().Get("document")
	window = js.Global().Get("window")
	console = js.Global().Get("console")

	console.Call("log", "🔭 graphscope client starting...")

	if strings.Contains(window.Get("location").Get("search").String(), "debug") {
		debug.EnableLogging()
	}

	a := newApp()
	a.loop.Start(context.Background())

	if document.Get("readyState").String() != "loading" {
		a.onReady()
	} else {
		a.listen(document, "DOMContentLoaded", false, func(js.Value) { a.onReady() })
	}

	// Keep the WASM runtime alive
	select {}
}

func newApp() *app {
	a := &app{loop: eventloop.New(256)}
	a.loop.SetErrorHandler(func(err interface{}) bool {
		console.Call("error", fmt.Sprint(err))
		return true
	})
	return a
}

func (a *app) onReady() {
	a.loader = dom.NewObjectLoader("main-svg", "thumb-svg")
	a.loader.SetPoster(a.post)

	a.input = dom.NewBodyInput(a.loader.Object(session.RoleThumb))
	a.input.SetPoster(a.post)

	a.scopeEl = dom.NewScopeContainer("scope-container")

	a.sess = session.New(session.Options{
		Store:          dom.NewObjectURLStore(),
		Loader:         a.loader,
		Renderer:       dom.NewScopeElement("scope"),
		ScopeContainer: a.scopeEl,
		GlobalInput:    a.input,
		Clamp:          viewport.ClampPolicy{Extent: viewport.ExtentViewBox},
	})

	a.listen(window, "resize", false, func(js.Value) {
		a.post(a.sess.Resize)
	})

	a.listen(a.scopeEl.Element(), "mousedown", false, func(e js.Value) {
		e.Call("preventDefault")
		e.Call("stopPropagation")
		ev := dom.PointerFromEvent(e, a.loader.Object(session.RoleThumb))
		a.post(func() { a.sess.PointerDown(ev) })
	})

	a.listen(a.scopeEl.Element(), "wheel", true, func(e js.Value) {
		e.Call("preventDefault")
		p := viewport.Point{X: e.Get("offsetX").Float(), Y: e.Get("offsetY").Float()}
		delta := e.Get("deltaY").Float()
		a.post(func() { a.sess.Wheel(p, delta) })
	})

	// graphscopeLoad(bytes: Uint8Array, id?: string)
	js.Global().Set("graphscopeLoad", js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) == 0 {
			return nil
		}
		data := make([]byte, args[0].Get("length").Int())
		js.CopyBytesToGo(data, args[0])
		id := ""
		if len(args) > 1 && args[1].Type() == js.TypeString {
			id = args[1].String()
		}
		a.post(func() { a.load(payload.Payload{ID: id, Data: data}) })
		return nil
	}))

	a.fetchGraph("graph.svg")
	a.connectLive()
}

// post runs fn on the event loop so the session is touched by one goroutine
func (a *app) post(fn func()) {
	if !a.loop.Post(fn) {
		log.Println("[Client] event loop full, dropping event")
	}
}

func (a *app) load(p payload.Payload) {
	if err := a.sess.Load(p); err != nil {
		log.Printf("[Client] load %q: %v", p.ID, err)
	}
}

// fetchGraph fetches the graph from the dev server and loads it
func (a *app) fetchGraph(id string) {
	var onBuffer, onResponse, onError js.Func
	release := func() {
		onBuffer.Release()
		onResponse.Release()
		onError.Release()
	}

	onResponse = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resp := args[0]
		if !resp.Get("ok").Bool() {
			log.Printf("[Client] fetch %s: HTTP %d", id, resp.Get("status").Int())
			return nil
		}
		return resp.Call("arrayBuffer")
	})
	onBuffer = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		defer release()
		if len(args) == 0 || args[0].IsUndefined() || args[0].IsNull() {
			return nil
		}
		buf := js.Global().Get("Uint8Array").New(args[0])
		data := make([]byte, buf.Get("length").Int())
		js.CopyBytesToGo(data, buf)
		a.post(func() {
			a.load(payload.Payload{ID: id, Data: data, MediaType: "image/svg+xml"})
		})
		return nil
	})
	onError = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		defer release()
		log.Printf("[Client] fetch %s failed: %s", id, args[0].Call("toString").String())
		return nil
	})

	js.Global().Call("fetch", "/"+id, map[string]interface{}{"cache": "no-store"}).
		Call("then", onResponse).
		Call("then", onBuffer).
		Call("catch", onError)
}

func (a *app) connectLive() {
	loc := window.Get("location")
	scheme := "ws://"
	if loc.Get("protocol").String() == "https:" {
		scheme = "wss://"
	}
	client := live.NewClient(scheme + loc.Get("host").String() + live.Path)
	client.OnReload(func(m live.Message) {
		log.Printf("[Client] reload %s (version %d)", m.ID, m.Version)
		a.fetchGraph("graph.svg")
	})
	if err := client.Connect(); err != nil {
		log.Printf("[Client] live reload unavailable: %v", err)
	}
}

func (a *app) listen(target js.Value, event string, active bool, fn func(js.Value)) {
	f := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var e js.Value
		if len(args) > 0 {
			e = args[0]
		}
		fn(e)
		return nil
	})
	a.funcs = append(a.funcs, f)
	if active {
		target.Call("addEventListener", event, f, map[string]interface{}{"passive": false})
		return
	}
	target.Call("addEventListener", event, f)
}
