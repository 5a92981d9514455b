package surface

import (
	"errors"
	"testing"

	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/session"
	"github.com/recera/graphscope/pkg/viewport"
)

const graphSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400 300">
<rect x="10" y="10" width="100" height="50" fill="#ccc"/>
</svg>`

func TestViewBox(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    viewport.Size
		wantErr bool
	}{
		{"view box", graphSVG, viewport.Size{Width: 400, Height: 300}, false},
		{"no view box", `<svg xmlns="http://www.w3.org/2000/svg"></svg>`, viewport.Size{}, true},
		{"not svg", "hello", viewport.Size{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ViewBox([]byte(tt.data))
			if tt.wantErr {
				if !errors.Is(err, ErrNoSurface) {
					t.Errorf("Expected ErrNoSurface, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestLoader_QueuesUntilFlush(t *testing.T) {
	reg := payload.NewRegistry()
	l := NewLoader(reg, DefaultLayout())
	h, _ := reg.Create(payload.Payload{Data: []byte(graphSVG)})

	var order []session.Role
	done := func(role session.Role) func(viewport.Adapter, error) {
		return func(a viewport.Adapter, err error) {
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			order = append(order, role)
		}
	}
	l.Load(session.RoleMain, h, done(session.RoleMain))
	l.Load(session.RoleThumb, h, done(session.RoleThumb))

	if l.Pending() != 2 || len(order) != 0 {
		t.Fatalf("Expected 2 queued decodes, got %d pending / %d run", l.Pending(), len(order))
	}
	if n := l.Flush(); n != 2 {
		t.Errorf("Expected Flush to run 2 decodes, got %d", n)
	}
	if len(order) != 2 || order[0] != session.RoleMain || order[1] != session.RoleThumb {
		t.Errorf("Expected FIFO order, got %v", order)
	}

	thumb := l.Surface(session.RoleThumb)
	if thumb == nil || thumb.Options().PanEnabled {
		t.Error("Expected a thumbnail surface with panning disabled")
	}
	if got := thumb.Sizes().Width; got != 200 {
		t.Errorf("Expected thumbnail container width 200, got %v", got)
	}
}

func TestLoader_ImmediateNested(t *testing.T) {
	reg := payload.NewRegistry()
	l := NewLoader(reg, DefaultLayout())
	l.Immediate = true
	h, _ := reg.Create(payload.Payload{Data: []byte(graphSVG)})

	var thumbDone bool
	l.Load(session.RoleMain, h, func(a viewport.Adapter, err error) {
		// loading from inside a callback queues behind the current decode
		l.Load(session.RoleThumb, h, func(viewport.Adapter, error) { thumbDone = true })
		if thumbDone {
			t.Error("Nested load must not run re-entrantly")
		}
	})

	if !thumbDone || l.Pending() != 0 {
		t.Errorf("Expected nested load to drain, thumbDone=%v pending=%d", thumbDone, l.Pending())
	}
}

func TestLoader_RevokedHandle(t *testing.T) {
	reg := payload.NewRegistry()
	l := NewLoader(reg, DefaultLayout())
	h, _ := reg.Create(payload.Payload{Data: []byte(graphSVG)})

	l.Load(session.RoleThumb, h, func(a viewport.Adapter, err error) {
		if !errors.Is(err, payload.ErrRevoked) {
			t.Errorf("Expected ErrRevoked, got %v", err)
		}
		if a != nil {
			t.Error("Expected no adapter on error")
		}
	})
	reg.Revoke(h)
	l.Flush()
}

func TestLoader_SetContainerSize(t *testing.T) {
	reg := payload.NewRegistry()
	l := NewLoader(reg, DefaultLayout())
	l.Immediate = true
	h, _ := reg.Create(payload.Payload{Data: []byte(graphSVG)})
	l.Load(session.RoleMain, h, func(viewport.Adapter, error) {})

	main := l.Surface(session.RoleMain)
	l.SetContainerSize(session.RoleMain, viewport.Size{Width: 400, Height: 300})
	if main.Sizes().Width != 800 {
		t.Error("Container size must not apply before Resize")
	}
	main.Resize()
	if main.Sizes().Width != 400 || main.Sizes().RealZoom != 1 {
		t.Errorf("Expected 400 wide at zoom 1 after resize, got %+v", main.Sizes())
	}
	if l.Layout().Main.Width != 400 {
		t.Error("Expected layout to record the new size")
	}
}
