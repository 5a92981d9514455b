package scope

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/recera/graphscope/pkg/viewport"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func state(zoom float64, pan viewport.Point, w, h float64) viewport.State {
	return viewport.State{
		Pan:       pan,
		Zoom:      zoom,
		Container: viewport.Size{Width: w, Height: h},
	}
}

func TestEngine_RawScenarios(t *testing.T) {
	e := NewEngine()
	thumb := state(0.5, viewport.Point{}, 200, 150)

	tests := []struct {
		name string
		main viewport.State
		want Rect
	}{
		{
			name: "unpanned main covers the whole thumbnail",
			main: state(2, viewport.Point{}, 800, 600),
			want: Rect{X: 0, Y: 0, Width: 200, Height: 150},
		},
		{
			name: "panned main shifts the scope by pan*ratio",
			main: state(2, viewport.Point{X: -100, Y: -50}, 800, 600),
			want: Rect{X: 25, Y: 12.5, Width: 200, Height: 150},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Raw(tt.main, thumb)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("Raw mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngine_ComputeClipsAndInsets(t *testing.T) {
	e := NewEngine()
	thumb := state(0.5, viewport.Point{}, 200, 150)

	got := e.Compute(state(2, viewport.Point{}, 800, 600), thumb)
	want := Rect{X: 1, Y: 1, Width: 198, Height: 148}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("full scope mismatch (-want +got):\n%s", diff)
	}

	// panned: x=25 and the width is cut at the far edge (200-25)
	got = e.Compute(state(2, viewport.Point{X: -100, Y: -50}, 800, 600), thumb)
	want = Rect{X: 26, Y: 13.5, Width: 173, Height: 135.5}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("panned scope mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ComputeMinSize(t *testing.T) {
	e := NewEngine()
	// main zoomed so far in that the scope is smaller than the inset
	main := state(10000, viewport.Point{X: -1000, Y: -1000}, 800, 600)
	thumb := state(0.5, viewport.Point{}, 200, 150)

	got := e.Compute(main, thumb)
	if got.Width != DefaultMinSize || got.Height != DefaultMinSize {
		t.Errorf("Expected min size %v, got %vx%v", DefaultMinSize, got.Width, got.Height)
	}
}

func TestEngine_ComputeTinyThumbnail(t *testing.T) {
	e := NewEngine()
	main := state(2, viewport.Point{}, 800, 600)

	for _, w := range []float64{0, 0.05} {
		got := e.Compute(main, state(0.5, viewport.Point{}, w, w))
		if got.X < 0 || got.X+got.Width > w || got.Y < 0 || got.Y+got.Height > w {
			t.Errorf("Expected rect inside a %v wide thumbnail, got %+v", w, got)
		}
	}
}

func TestEngine_ScopeContainment(t *testing.T) {
	e := NewEngine()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		thumbW := 10 + rng.Float64()*400
		thumbH := 10 + rng.Float64()*400
		main := state(
			0.01+rng.Float64()*50,
			viewport.Point{X: (rng.Float64() - 0.5) * 1e5, Y: (rng.Float64() - 0.5) * 1e5},
			1+rng.Float64()*2000, 1+rng.Float64()*2000,
		)
		thumb := state(
			0.01+rng.Float64()*2,
			viewport.Point{X: (rng.Float64() - 0.5) * 100, Y: (rng.Float64() - 0.5) * 100},
			thumbW, thumbH,
		)

		r := e.Compute(main, thumb)
		const tol = 1e-9
		if r.X < 0 || r.Y < 0 || r.X+r.Width > thumbW+tol || r.Y+r.Height > thumbH+tol {
			t.Fatalf("case %d: rect %+v escapes thumbnail %vx%v", i, r, thumbW, thumbH)
		}
		if r.Width <= 0 || r.Height <= 0 {
			t.Fatalf("case %d: rect %+v has non-positive size", i, r)
		}
	}
}

func TestEngine_RoundTrip(t *testing.T) {
	e := NewEngine()
	rng := rand.New(rand.NewSource(7))

	checked := 0
	for i := 0; i < 5000; i++ {
		main := state(
			0.5+rng.Float64()*20,
			viewport.Point{X: -rng.Float64() * 5000, Y: -rng.Float64() * 5000},
			200+rng.Float64()*1000, 200+rng.Float64()*1000,
		)
		thumb := state(
			0.05+rng.Float64()*0.5,
			viewport.Point{X: rng.Float64() * 20, Y: rng.Float64() * 20},
			300, 300,
		)

		raw := e.Raw(main, thumb)
		// the round trip is exact only while the rectangle is not clipped
		if raw.X < 0 || raw.Y < 0 || raw.X+raw.Width > 300 || raw.Y+raw.Height > 300 ||
			raw.Width-2*e.Inset < e.MinSize || raw.Height-2*e.Inset < e.MinSize {
			continue
		}
		checked++

		rect := e.Compute(main, thumb)
		got := e.PointerToMainPan(rect.Center(), thumb, main)
		if diff := cmp.Diff(main.Pan, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
			t.Fatalf("case %d: round trip mismatch (-want +got):\n%s", i, diff)
		}

		// applying the same pointer again is idempotent
		again := e.PointerToMainPan(e.Compute(state(main.Zoom, got, main.Container.Width, main.Container.Height), thumb).Center(), thumb, main)
		if diff := cmp.Diff(got, again, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
			t.Fatalf("case %d: second application moved the pan (-want +got):\n%s", i, diff)
		}
	}
	if checked < 100 {
		t.Fatalf("Expected at least 100 unclipped cases, got %d", checked)
	}
}

func TestEngine_PointerToMainPanCentersScope(t *testing.T) {
	e := &Engine{}
	thumb := state(0.5, viewport.Point{}, 200, 150)
	main := state(2, viewport.Point{}, 800, 600)

	// scope is 800x600 * 0.25 = 200x150
	// pointer 100,80 -> origin 0,5 -> pan -(0,5)*4
	got := e.PointerToMainPan(viewport.Point{X: 100, Y: 80}, thumb, main)
	if diff := cmp.Diff(viewport.Point{X: 0, Y: -20}, got, approx); diff != "" {
		t.Errorf("pan mismatch (-want +got):\n%s", diff)
	}

	// the inset does not move the center
	inset := &Engine{Inset: 3}
	if diff := cmp.Diff(got, inset.PointerToMainPan(viewport.Point{X: 100, Y: 80}, thumb, main), approx); diff != "" {
		t.Errorf("inset changed the pan (-want +got):\n%s", diff)
	}

	// pointers outside the thumbnail are clamped to its bounds
	got = e.PointerToMainPan(viewport.Point{X: 900, Y: -40}, thumb, main)
	if diff := cmp.Diff(viewport.Point{X: -400, Y: 300}, got, approx); diff != "" {
		t.Errorf("clamped pan mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_NonFiniteOnZeroZoom(t *testing.T) {
	e := NewEngine()
	r := e.Compute(state(0, viewport.Point{X: -10}, 800, 600), state(0.5, viewport.Point{}, 200, 150))
	if r.Finite() {
		// the division by zero must surface, not be hidden
		t.Errorf("Expected non-finite rect for zero main zoom, got %+v", r)
	}
	if !(Rect{X: 1, Width: math.MaxFloat64}).Finite() {
		t.Error("Large but finite rect reported as non-finite")
	}
}

func TestThumbToMain(t *testing.T) {
	got := ThumbToMain(viewport.Point{X: 50, Y: 75},
		state(0.5, viewport.Point{}, 200, 150),
		state(2, viewport.Point{}, 800, 600))
	if got != (viewport.Point{X: 200, Y: 300}) {
		t.Errorf("Expected {200 300}, got %v", got)
	}
}

func TestRecordingRenderer(t *testing.T) {
	var rr RecordingRenderer
	if _, ok := rr.Last(); ok {
		t.Fatal("Expected no rect before rendering")
	}

	var r Renderer = &rr
	r.Render(Rect{X: 1})
	r.Render(Rect{X: 2})

	last, ok := rr.Last()
	if !ok || last.X != 2 || len(rr.Rects) != 2 {
		t.Errorf("Unexpected recording: %+v", rr.Rects)
	}

	rr.Reset()
	if len(rr.Rects) != 0 {
		t.Error("Expected Reset to clear recording")
	}
}
