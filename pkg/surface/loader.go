// Package surface decodes payloads into headless viewport adapters. It is the
// SurfaceLoader used by the terminal host, the scenario runner and tests.
package surface

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/srwiley/oksvg"

	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/session"
	"github.com/recera/graphscope/pkg/viewport"
)

// ErrNoSurface is returned when a payload cannot be decoded into a surface
var ErrNoSurface = errors.New("surface: payload is not a drawable svg")

// Resolver maps a handle back to its payload
type Resolver interface {
	Resolve(h payload.Handle) (payload.Payload, error)
}

// Layout holds the container size of each view
type Layout struct {
	Main  viewport.Size `json:"main" yaml:"main"`
	Thumb viewport.Size `json:"thumb" yaml:"thumb"`
}

// DefaultLayout mirrors the original page: a large main view and a
// fixed-height overview strip.
func DefaultLayout() Layout {
	return Layout{
		Main:  viewport.Size{Width: 800, Height: 600},
		Thumb: viewport.Size{Width: 200, Height: 150},
	}
}

type job struct {
	role session.Role
	h    payload.Handle
	done func(viewport.Adapter, error)
}

// Loader builds headless adapters. Decodes are queued and drained in FIFO
// order, either right away (Immediate) or on Flush.
type Loader struct {
	// Immediate drains the queue on every Load
	Immediate bool

	resolver Resolver
	layout   Layout
	options  map[session.Role]viewport.Options
	surfaces map[session.Role]*viewport.Headless
	queue    []job
	draining bool
}

// NewLoader creates a loader resolving handles through r
func NewLoader(r Resolver, layout Layout) *Loader {
	return &Loader{
		resolver: r,
		layout:   layout,
		options: map[session.Role]viewport.Options{
			session.RoleMain:  viewport.MainOptions(),
			session.RoleThumb: viewport.ThumbnailOptions(),
		},
		surfaces: make(map[session.Role]*viewport.Headless),
	}
}

// SetOptions overrides the adapter options used for role
func (l *Loader) SetOptions(role session.Role, o viewport.Options) {
	l.options[role] = o
}

// Load implements session.SurfaceLoader
func (l *Loader) Load(role session.Role, h payload.Handle, done func(viewport.Adapter, error)) {
	l.queue = append(l.queue, job{role: role, h: h, done: done})
	if l.Immediate {
		l.Flush()
	}
}

// Pending returns the number of queued decodes
func (l *Loader) Pending() int { return len(l.queue) }

// Flush runs queued decodes, including ones queued by their callbacks, and
// returns how many ran.
func (l *Loader) Flush() int {
	if l.draining {
		return 0
	}
	l.draining = true
	defer func() { l.draining = false }()

	n := 0
	for len(l.queue) > 0 {
		j := l.queue[0]
		l.queue = l.queue[1:]
		n++

		a, err := l.decode(j.role, j.h)
		if err != nil {
			j.done(nil, err)
			continue
		}
		j.done(a, nil)
	}
	return n
}

// Step runs only the oldest queued decode
func (l *Loader) Step() bool {
	if len(l.queue) == 0 {
		return false
	}
	j := l.queue[0]
	l.queue = l.queue[1:]
	a, err := l.decode(j.role, j.h)
	if err != nil {
		j.done(nil, err)
	} else {
		j.done(a, nil)
	}
	return true
}

// Surface returns the most recently built adapter for role
func (l *Loader) Surface(role session.Role) *viewport.Headless {
	return l.surfaces[role]
}

// Layout returns the current container sizes
func (l *Loader) Layout() Layout { return l.layout }

// SetContainerSize records a new container size for role. The live surface
// picks it up on its next Resize, as do surfaces built later.
func (l *Loader) SetContainerSize(role session.Role, s viewport.Size) {
	if role == session.RoleThumb {
		l.layout.Thumb = s
	} else {
		l.layout.Main = s
	}
	if a := l.surfaces[role]; a != nil {
		a.SetContainerSize(s)
	}
}

func (l *Loader) decode(role session.Role, h payload.Handle) (*viewport.Headless, error) {
	p, err := l.resolver.Resolve(h)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", h, err)
	}
	vb, err := ViewBox(p.Data)
	if err != nil {
		return nil, err
	}

	container := l.layout.Main
	if role == session.RoleThumb {
		container = l.layout.Thumb
	}
	a := viewport.NewHeadless(vb, container, l.options[role])
	l.surfaces[role] = a
	return a, nil
}

// ViewBox decodes an svg document and returns its view box size
func ViewBox(data []byte) (viewport.Size, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return viewport.Size{}, fmt.Errorf("%w: %v", ErrNoSurface, err)
	}
	vb := viewport.Size{Width: icon.ViewBox.W, Height: icon.ViewBox.H}
	if vb.Empty() {
		return viewport.Size{}, fmt.Errorf("%w: missing view box", ErrNoSurface)
	}
	return vb, nil
}
