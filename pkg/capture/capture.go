// Package capture implements the global pointer capture used while dragging
// inside the thumbnail.
//
// A drag that starts on the thumbnail keeps tracking the pointer after it
// leaves the thumbnail's bounds. The host provides the global part through
// GlobalInput: while a capture is active, every pointer move and the final
// pointer up are routed to the Capture no matter where they happen, and
// delivery to other elements is suppressed.
package capture

// PointerEvent is a pointer position in thumbnail container pixels
type PointerEvent struct {
	// ID identifies the pointer (0 for a mouse)
	ID int
	X  float64
	Y  float64
	// Buttons is the pressed-button mask; 0 means no effective button
	Buttons int
}

// Handler receives globally routed pointer events
type Handler interface {
	Move(ev PointerEvent)
	Up(ev PointerEvent)
}

// GlobalInput is the host's global input suppression capability
type GlobalInput interface {
	// Grab suppresses pointer delivery to every other element and routes
	// moves and ups to h at the topmost capture level.
	Grab(h Handler)
	// Release restores normal delivery and unregisters the routing.
	Release()
}

// State is the capture state
type State int

const (
	Idle State = iota
	Capturing
)

func (s State) String() string {
	if s == Capturing {
		return "capturing"
	}
	return "idle"
}

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Capture is the Idle/Capturing state machine. It holds no geometry: drag
// calls the host back with each event and the host recomputes from live
// adapter state.
type Capture struct {
	input   GlobalInput
	drag    func(ev PointerEvent)
	state   State
	pointer int
}

// New creates a capture routing drag events to drag
func New(input GlobalInput, drag func(ev PointerEvent)) *Capture {
	if input == nil {
		input = NopInput{}
	}
	return &Capture{input: input, drag: drag}
}

// State returns the current state
func (c *Capture) State() State { return c.state }

// Active reports whether a drag session is active
func (c *Capture) Active() bool { return c.state == Capturing }

// Down starts a capture for a pointer pressed inside the scope container.
// It returns false when the event is ignored: no effective button, or a
// capture is already active (a single session at a time).
func (c *Capture) Down(ev PointerEvent) bool {
	if ev.Buttons == 0 {
		return false
	}
	if c.state == Capturing {
		if debugLog != nil {
			debugLog("[Capture] ignoring down from pointer", ev.ID, "while pointer", c.pointer, "is captured")
		}
		return false
	}

	c.state = Capturing
	c.pointer = ev.ID
	c.input.Grab(c)
	if debugLog != nil {
		debugLog("[Capture] started for pointer", ev.ID)
	}
	c.forward(ev)
	return true
}

// Move implements Handler
func (c *Capture) Move(ev PointerEvent) {
	if c.state != Capturing || ev.ID != c.pointer {
		return
	}
	c.forward(ev)
}

// Up implements Handler. It ends the capture wherever the pointer is.
func (c *Capture) Up(ev PointerEvent) {
	if c.state != Capturing || ev.ID != c.pointer {
		return
	}
	c.stop()
}

// Reset forces the machine back to Idle, releasing global input if held
func (c *Capture) Reset() {
	if c.state == Capturing {
		c.stop()
	}
}

func (c *Capture) stop() {
	c.state = Idle
	c.input.Release()
	if debugLog != nil {
		debugLog("[Capture] released pointer", c.pointer)
	}
}

func (c *Capture) forward(ev PointerEvent) {
	if c.drag != nil {
		c.drag(ev)
	}
}

// NopInput is a GlobalInput for hosts that already deliver every pointer
// event to the capture
type NopInput struct{}

// Grab implements GlobalInput
func (NopInput) Grab(Handler) {}

// Release implements GlobalInput
func (NopInput) Release() {}
