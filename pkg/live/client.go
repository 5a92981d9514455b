//go:build js && wasm
// +build js,wasm

package live

import (
	"log"
	"syscall/js"
)

// Client listens for reload messages from the browser
type Client struct {
	ws       js.Value
	url      string
	funcs    []js.Func
	onReload func(Message)
	onReady  func()
}

// NewClient creates a live-reload client for url
func NewClient(url string) *Client {
	return &Client{
		url: url,
	}
}

// Connect establishes the WebSocket connection
func (c *Client) Connect() error {
	c.ws = js.Global().Get("WebSocket").New(c.url)

	c.on("onopen", func(js.Value) {
		log.Println("[Live Client] Connected")
		if c.onReady != nil {
			c.onReady()
		}
	})

	c.on("onmessage", func(event js.Value) {
		data := event.Get("data")
		if data.Type() != js.TypeString {
			return
		}
		m, err := Decode([]byte(data.String()))
		if err != nil {
			log.Printf("[Live Client] %v", err)
			return
		}
		if m.Type == TypeReload && c.onReload != nil {
			c.onReload(m)
		}
	})

	c.on("onerror", func(js.Value) {
		log.Println("[Live Client] WebSocket error")
	})

	c.on("onclose", func(js.Value) {
		log.Println("[Live Client] Disconnected")
	})

	return nil
}

func (c *Client) on(name string, fn func(js.Value)) {
	f := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var ev js.Value
		if len(args) > 0 {
			ev = args[0]
		}
		fn(ev)
		return nil
	})
	c.funcs = append(c.funcs, f)
	c.ws.Set(name, f)
}

// Send sends a message to the server
func (c *Client) Send(m Message) error {
	if c.ws.IsUndefined() || c.ws.IsNull() {
		return nil
	}
	data, err := Encode(m)
	if err != nil {
		return err
	}
	c.ws.Call("send", string(data))
	return nil
}

// Close closes the connection and releases the callbacks
func (c *Client) Close() {
	if !c.ws.IsNull() && !c.ws.IsUndefined() {
		for _, name := range []string{"onopen", "onmessage", "onerror", "onclose"} {
			c.ws.Set(name, js.Null())
		}
		c.ws.Call("close")
	}
	for _, f := range c.funcs {
		f.Release()
	}
	c.funcs = nil
}

// OnReload sets the reload handler
func (c *Client) OnReload(handler func(Message)) {
	c.onReload = handler
}

// OnReady sets the ready handler
func (c *Client) OnReady(handler func()) {
	c.onReady = handler
}
