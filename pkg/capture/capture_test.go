package capture

import "testing"

// fakeInput records grabs and routes "global" events like a document-level
// capture listener would.
type fakeInput struct {
	grabs    int
	releases int
	handler  Handler
}

func (f *fakeInput) Grab(h Handler) {
	f.grabs++
	f.handler = h
}

func (f *fakeInput) Release() {
	f.releases++
	f.handler = nil
}

func (f *fakeInput) move(ev PointerEvent) {
	if f.handler != nil {
		f.handler.Move(ev)
	}
}

func (f *fakeInput) up(ev PointerEvent) {
	if f.handler != nil {
		f.handler.Up(ev)
	}
}

func TestCapture_Lifecycle(t *testing.T) {
	in := &fakeInput{}
	var drags []PointerEvent
	c := New(in, func(ev PointerEvent) { drags = append(drags, ev) })

	if c.State() != Idle {
		t.Fatalf("Expected Idle, got %v", c.State())
	}

	if !c.Down(PointerEvent{X: 10, Y: 10, Buttons: 1}) {
		t.Fatal("Expected down with a button to start a capture")
	}
	if c.State() != Capturing || in.grabs != 1 {
		t.Fatalf("Expected Capturing with one grab, got %v / %d", c.State(), in.grabs)
	}

	// moves far outside the thumbnail are still tracked
	in.move(PointerEvent{X: -500, Y: 900, Buttons: 1})
	in.move(PointerEvent{X: 20, Y: 30, Buttons: 1})

	in.up(PointerEvent{X: 9999, Y: 9999})
	if c.State() != Idle || in.releases != 1 {
		t.Fatalf("Expected Idle with one release, got %v / %d", c.State(), in.releases)
	}

	// no longer routed
	c.Move(PointerEvent{X: 1, Y: 1})

	if len(drags) != 3 {
		t.Fatalf("Expected 3 drag events (down + 2 moves), got %d", len(drags))
	}
	if drags[1].X != -500 || drags[2].Y != 30 {
		t.Errorf("Unexpected drag events: %+v", drags)
	}
}

func TestCapture_IgnoresDownWithoutButton(t *testing.T) {
	in := &fakeInput{}
	called := false
	c := New(in, func(PointerEvent) { called = true })

	if c.Down(PointerEvent{X: 5, Y: 5}) {
		t.Error("Expected down without buttons to be ignored")
	}
	if c.Active() || in.grabs != 0 || called {
		t.Error("Ignored down must not capture or drag")
	}
}

func TestCapture_SessionExclusivity(t *testing.T) {
	in := &fakeInput{}
	var drags []PointerEvent
	c := New(in, func(ev PointerEvent) { drags = append(drags, ev) })

	c.Down(PointerEvent{ID: 1, X: 10, Y: 10, Buttons: 1})
	if c.Down(PointerEvent{ID: 2, X: 50, Y: 50, Buttons: 1}) {
		t.Error("Expected second down to be a no-op")
	}

	in.move(PointerEvent{ID: 2, X: 60, Y: 60, Buttons: 1})
	in.move(PointerEvent{ID: 1, X: 11, Y: 12, Buttons: 1})
	in.up(PointerEvent{ID: 2})

	if !c.Active() {
		t.Error("Up from the other pointer must not end the session")
	}
	if in.grabs != 1 {
		t.Errorf("Expected a single grab, got %d", in.grabs)
	}
	if len(drags) != 2 || drags[1].ID != 1 || drags[1].X != 11 {
		t.Errorf("Expected only pointer 1 to drive the drag, got %+v", drags)
	}

	in.up(PointerEvent{ID: 1})
	if c.Active() {
		t.Error("Expected up from the capturing pointer to end the session")
	}
}

func TestCapture_Reset(t *testing.T) {
	in := &fakeInput{}
	c := New(in, nil)

	c.Reset()
	if in.releases != 0 {
		t.Error("Reset while idle must not release input")
	}

	c.Down(PointerEvent{Buttons: 1})
	c.Reset()
	c.Reset()

	if c.Active() || in.releases != 1 {
		t.Errorf("Expected one release after reset, got active=%v releases=%d", c.Active(), in.releases)
	}
}

func TestCapture_NilInput(t *testing.T) {
	c := New(nil, nil)
	c.Down(PointerEvent{Buttons: 1})
	c.Move(PointerEvent{})
	c.Up(PointerEvent{})
	if c.Active() {
		t.Error("Expected capture to end")
	}
}
