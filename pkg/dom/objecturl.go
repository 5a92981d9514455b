//go:build js && wasm
// +build js,wasm

package dom

import (
	"errors"
	"syscall/js"

	"github.com/recera/graphscope/pkg/payload"
)

// ObjectURLStore implements payload.Store with blob object URLs
type ObjectURLStore struct {
	url js.Value
}

// NewObjectURLStore creates a store backed by window.URL
func NewObjectURLStore() *ObjectURLStore {
	return &ObjectURLStore{url: js.Global().Get("URL")}
}

// Create implements payload.Store
func (s *ObjectURLStore) Create(p payload.Payload) (h payload.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("createObjectURL failed")
		}
	}()

	arr := js.Global().Get("Uint8Array").New(len(p.Data))
	js.CopyBytesToJS(arr, p.Data)

	mediaType := p.MediaType
	if mediaType == "" {
		mediaType = "image/svg+xml"
	}
	blob := js.Global().Get("Blob").New(
		[]interface{}{arr},
		map[string]interface{}{"type": mediaType},
	)
	return payload.Handle(s.url.Call("createObjectURL", blob).String()), nil
}

// Revoke implements payload.Store
func (s *ObjectURLStore) Revoke(h payload.Handle) {
	s.url.Call("revokeObjectURL", string(h))
}
