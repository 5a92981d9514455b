// Package session wires the two viewports, the scope engine, the drag
// capture and the payload lifecycle into one explicit object.
//
// A Session is single-threaded: every method must be called from the host's
// event goroutine. Adapters are torn down and rebuilt on every Load.
package session

import (
	"fmt"
	"log"

	"github.com/recera/graphscope/pkg/capture"
	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/scope"
	"github.com/recera/graphscope/pkg/viewport"
)

// Role identifies which view a surface belongs to
type Role int

const (
	RoleMain Role = iota
	RoleThumb
)

func (r Role) String() string {
	if r == RoleThumb {
		return "thumb"
	}
	return "main"
}

// SurfaceLoader decodes the payload behind a handle into a surface and
// reports the adapter bound to it. done may run synchronously or later, but
// always on the session's goroutine.
type SurfaceLoader interface {
	Load(role Role, h payload.Handle, done func(viewport.Adapter, error))
}

// ScopeContainer is the element hosting the scope rectangle. Its width
// follows the thumbnail's rendered width.
type ScopeContainer interface {
	SetWidth(w float64)
}

// Options configures a Session. Store and Loader are required.
type Options struct {
	Store          payload.Store
	Loader         SurfaceLoader
	Renderer       scope.Renderer
	ScopeContainer ScopeContainer
	GlobalInput    capture.GlobalInput
	Engine         *scope.Engine
	Clamp          viewport.ClampPolicy
	// WheelSensitivity converts forwarded wheel deltas to zoom factors
	WheelSensitivity float64
}

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Session holds both adapters and everything synchronized between them
type Session struct {
	opts      Options
	lifecycle *payload.Lifecycle
	engine    *scope.Engine
	capture   *capture.Capture

	main  viewport.Adapter
	thumb viewport.Adapter

	gen       uint64 // bumped on every Load; stale decode callbacks compare it
	payloadID string
	rect      scope.Rect
	hasRect   bool
	loadErr   error
}

// New creates a session
func New(opts Options) *Session {
	if opts.Store == nil || opts.Loader == nil {
		panic("session: Store and Loader are required")
	}
	if opts.Renderer == nil {
		opts.Renderer = scope.RendererFunc(func(scope.Rect) {})
	}
	if opts.Engine == nil {
		opts.Engine = scope.NewEngine()
	}
	if opts.WheelSensitivity <= 0 {
		opts.WheelSensitivity = 0.2
	}

	s := &Session{
		opts:      opts,
		lifecycle: payload.NewLifecycle(opts.Store),
		engine:    opts.Engine,
	}
	s.capture = capture.New(opts.GlobalInput, s.dragTo)
	return s
}

// Lifecycle exposes the payload lifecycle, mainly to observe releases
func (s *Session) Lifecycle() *payload.Lifecycle { return s.lifecycle }

// Load replaces the displayed image. Any drag is cancelled, both adapters
// are destroyed, the previous payload handle is released, and the new
// payload is handed to the main surface. The thumbnail follows once the
// main surface has decoded.
func (s *Session) Load(p payload.Payload) error {
	s.teardown()
	s.gen++
	s.payloadID = p.ID
	s.loadErr = nil

	h, err := s.lifecycle.Bind(p)
	if err != nil {
		s.loadErr = err
		return err
	}
	gen := s.gen
	s.opts.Loader.Load(RoleMain, h, func(a viewport.Adapter, err error) {
		s.mainLoaded(gen, h, a, err)
	})
	return nil
}

func (s *Session) mainLoaded(gen uint64, h payload.Handle, a viewport.Adapter, err error) {
	if gen != s.gen {
		discard(a)
		return
	}
	if err != nil {
		s.fail(h, RoleMain, err)
		return
	}

	a.SetBeforePan(s.opts.Clamp.Interceptor(a))
	s.main = a

	th, err := s.lifecycle.MainDecoded(h)
	if err != nil {
		log.Printf("[Session] main decode signal rejected: %v", err)
		return
	}
	s.opts.Loader.Load(RoleThumb, th, func(a viewport.Adapter, err error) {
		s.thumbLoaded(gen, th, a, err)
	})
}

func (s *Session) thumbLoaded(gen uint64, h payload.Handle, a viewport.Adapter, err error) {
	if gen != s.gen {
		discard(a)
		return
	}
	if err != nil {
		s.fail(h, RoleThumb, err)
		return
	}
	if err := s.lifecycle.ThumbDecoded(h); err != nil {
		log.Printf("[Session] thumbnail decode signal rejected: %v", err)
	}
	s.thumb = a
	s.bind()
}

// fail leaves both views unbound after a decode error
func (s *Session) fail(h payload.Handle, role Role, err error) {
	log.Printf("[Session] failed to load %s surface for %q: %v", role, s.payloadID, err)
	s.loadErr = fmt.Errorf("%s surface: %w", role, err)
	if s.main != nil {
		s.main.Destroy()
		s.main = nil
	}
	if err := s.lifecycle.Failed(h); err != nil && debugLog != nil {
		debugLog("[Session] release after failure:", err)
	}
}

// bind wires notifications once both adapters exist
func (s *Session) bind() {
	if s.opts.ScopeContainer != nil {
		s.opts.ScopeContainer.SetWidth(s.thumb.Sizes().Width)
	}
	s.main.SetOnZoom(func(float64) { s.UpdateScope() })
	s.main.SetOnPan(func(viewport.Point) { s.UpdateScope() })
	s.UpdateScope()
}

// Ready reports whether both adapters exist
func (s *Session) Ready() bool {
	return s.main != nil && s.thumb != nil
}

// Err returns the error of the last Load, if it failed
func (s *Session) Err() error { return s.loadErr }

// Main returns the main adapter, nil until decoded
func (s *Session) Main() viewport.Adapter { return s.main }

// Thumb returns the thumbnail adapter, nil until decoded
func (s *Session) Thumb() viewport.Adapter { return s.thumb }

// PayloadID returns the logical identifier of the current payload
func (s *Session) PayloadID() string { return s.payloadID }

// Scope returns the last rendered scope rectangle
func (s *Session) Scope() (scope.Rect, bool) { return s.rect, s.hasRect }

// Capturing reports whether a thumbnail drag is in progress
func (s *Session) Capturing() bool { return s.capture.Active() }

// UpdateScope recomputes and renders the scope rectangle. A non-finite
// rectangle is dropped for this frame.
func (s *Session) UpdateScope() {
	if !s.Ready() {
		return
	}
	r := s.engine.Compute(viewport.StateOf(s.main), viewport.StateOf(s.thumb))
	if !r.Finite() {
		if debugLog != nil {
			debugLog("[Session] skipping non-finite scope", r)
		}
		return
	}
	s.rect = r
	s.hasRect = true
	s.opts.Renderer.Render(r)
}

// Resize re-fits both views after a window size change. The thumbnail is
// resized first so the scope container can follow its new width; the scope
// is recomputed only after both views settled.
func (s *Session) Resize() {
	if !s.Ready() {
		return
	}
	s.thumb.Resize()
	if s.opts.ScopeContainer != nil {
		s.opts.ScopeContainer.SetWidth(s.thumb.Sizes().Width)
	}
	s.main.Resize()
	s.main.Reset()
	s.thumb.Reset()
	s.UpdateScope()
}

// PointerDown handles a press inside the scope container
func (s *Session) PointerDown(ev capture.PointerEvent) bool {
	if !s.Ready() {
		return false
	}
	return s.capture.Down(ev)
}

// PointerMove forwards a pointer move to the capture
func (s *Session) PointerMove(ev capture.PointerEvent) {
	s.capture.Move(ev)
}

// PointerUp forwards a pointer release to the capture
func (s *Session) PointerUp(ev capture.PointerEvent) {
	s.capture.Up(ev)
}

// dragTo pans the main view so the scope is centered on the pointer
func (s *Session) dragTo(ev capture.PointerEvent) {
	if !s.Ready() {
		return
	}
	main := viewport.StateOf(s.main)
	thumb := viewport.StateOf(s.thumb)
	if !main.Valid() || !thumb.Valid() {
		return
	}
	pan := s.engine.PointerToMainPan(viewport.Point{X: ev.X, Y: ev.Y}, thumb, main)
	s.main.PanTo(pan)
}

// Wheel zooms the main view from a wheel event over the thumbnail, around
// the main-view point matching the pointer's relative position.
func (s *Session) Wheel(p viewport.Point, delta float64) {
	if !s.Ready() {
		return
	}
	z, ok := s.main.(viewport.Zoomer)
	if !ok {
		return
	}
	at := scope.ThumbToMain(p, viewport.StateOf(s.thumb), viewport.StateOf(s.main))
	z.ZoomAtPointBy(viewport.WheelFactor(delta, s.opts.WheelSensitivity), at)
}

// Close releases everything the session holds
func (s *Session) Close() {
	s.teardown()
	s.gen++
	s.lifecycle.Close()
}

func (s *Session) teardown() {
	s.capture.Reset()
	if s.main != nil {
		s.main.Destroy()
		s.main = nil
	}
	if s.thumb != nil {
		s.thumb.Destroy()
		s.thumb = nil
	}
	s.hasRect = false
}

func discard(a viewport.Adapter) {
	if a != nil {
		a.Destroy()
	}
}
