// Package payload manages the lifetime of the image payload shared by the
// main and thumbnail views.
//
// A payload is decoded through exactly one handle at a time. The main view
// receives the handle first; once it has decoded, the handle is transferred
// to the thumbnail, and it is released only after the thumbnail has decoded
// too. Releasing earlier leaves the slower consumer with a dangling handle.
package payload

import (
	"errors"
	"fmt"
)

// Payload is one image as delivered by the loader
type Payload struct {
	// ID is an optional logical identifier (e.g. a repository path)
	ID        string
	Data      []byte
	MediaType string
}

// Handle references a payload through a platform resource (an object URL in
// the browser)
type Handle string

// Store creates and frees platform handles
type Store interface {
	Create(p Payload) (Handle, error)
	Revoke(h Handle)
}

var (
	// ErrRevoked is returned when resolving a released handle
	ErrRevoked = errors.New("payload: handle revoked")
	// ErrUnknownHandle is returned when resolving a handle the store never issued
	ErrUnknownHandle = errors.New("payload: unknown handle")
	// ErrNotCurrent is returned for decode signals of a superseded binding
	ErrNotCurrent = errors.New("payload: handle is not the current binding")
)

// stage tracks which consumer holds the handle
type stage int

const (
	stageMain stage = iota
	stageThumb
	stageReleased
)

type binding struct {
	payload Payload
	handle  Handle
	stage   stage
}

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Lifecycle owns the current binding
type Lifecycle struct {
	store     Store
	current   *binding
	onRelease func(Handle)
}

// NewLifecycle creates a lifecycle backed by store
func NewLifecycle(store Store) *Lifecycle {
	if store == nil {
		panic("payload: nil store")
	}
	return &Lifecycle{store: store}
}

// OnRelease registers an observer called after every release
func (l *Lifecycle) OnRelease(fn func(Handle)) {
	l.onRelease = fn
}

// Bind creates the main view's handle for p. A previous binding that is
// still live is released first.
func (l *Lifecycle) Bind(p Payload) (Handle, error) {
	l.releaseCurrent()

	h, err := l.store.Create(p)
	if err != nil {
		return "", fmt.Errorf("create handle for %q: %w", p.ID, err)
	}
	l.current = &binding{payload: p, handle: h, stage: stageMain}
	if debugLog != nil {
		debugLog("[Payload] bound", p.ID, "as", h)
	}
	return h, nil
}

// MainDecoded records the main view's successful decode and transfers the
// handle to the thumbnail, returning it.
func (l *Lifecycle) MainDecoded(h Handle) (Handle, error) {
	b, err := l.lookup(h)
	if err != nil {
		return "", err
	}
	if b.stage != stageMain {
		return "", fmt.Errorf("main decode for %s in wrong stage", h)
	}
	b.stage = stageThumb
	if debugLog != nil {
		debugLog("[Payload] transferred", h, "to thumbnail")
	}
	return b.handle, nil
}

// ThumbDecoded records the thumbnail's successful decode and releases the
// handle: both consumers are done with it.
func (l *Lifecycle) ThumbDecoded(h Handle) error {
	b, err := l.lookup(h)
	if err != nil {
		return err
	}
	if b.stage != stageThumb {
		return fmt.Errorf("thumbnail decode for %s in wrong stage", h)
	}
	l.release(b)
	return nil
}

// Failed releases the binding of h after a decode failure
func (l *Lifecycle) Failed(h Handle) error {
	b, err := l.lookup(h)
	if err != nil {
		return err
	}
	l.release(b)
	return nil
}

// Current returns the live handle, if any
func (l *Lifecycle) Current() (Handle, bool) {
	if l.current == nil || l.current.stage == stageReleased {
		return "", false
	}
	return l.current.handle, true
}

// Close releases any live binding
func (l *Lifecycle) Close() {
	l.releaseCurrent()
	l.current = nil
}

func (l *Lifecycle) lookup(h Handle) (*binding, error) {
	if l.current == nil || l.current.handle != h || l.current.stage == stageReleased {
		return nil, fmt.Errorf("%s: %w", h, ErrNotCurrent)
	}
	return l.current, nil
}

func (l *Lifecycle) releaseCurrent() {
	if l.current != nil && l.current.stage != stageReleased {
		l.release(l.current)
	}
}

func (l *Lifecycle) release(b *binding) {
	b.stage = stageReleased
	l.store.Revoke(b.handle)
	if debugLog != nil {
		debugLog("[Payload] released", b.handle)
	}
	if l.onRelease != nil {
		l.onRelease(b.handle)
	}
}
