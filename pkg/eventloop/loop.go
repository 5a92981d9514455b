// Package eventloop serializes callbacks onto one goroutine. Hosts whose
// inputs arrive on other goroutines (file watchers, websockets, fetches)
// post them here so the session is only ever touched from the loop.
package eventloop

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

// ErrorHandler handles a panic raised by a posted callback.
// Returns true to keep the loop running.
type ErrorHandler func(err interface{}) bool

// debugLog is set by platform-specific code
var debugLog func(args ...interface{})

// SetDebugLog sets the debug logging function
func SetDebugLog(fn func(args ...interface{})) {
	debugLog = fn
}

// Loop runs posted callbacks in order
type Loop struct {
	queue   chan func()
	started atomic.Bool
	running atomic.Bool
	done    chan struct{}
	onError ErrorHandler
	ran     atomic.Int64
}

// New creates a loop whose queue holds up to size pending callbacks
func New(size int) *Loop {
	if size <= 0 {
		size = 256
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// SetErrorHandler sets the panic handler. Without one a panic stops the loop.
func (l *Loop) SetErrorHandler(h ErrorHandler) {
	l.onError = h
}

// Post queues fn. It returns false if the queue is full or fn is nil.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}
	select {
	case l.queue <- fn:
		return true
	default:
		if debugLog != nil {
			debugLog("[EventLoop] queue full, dropping callback")
		}
		return false
	}
}

// Start runs the loop on a new goroutine. A loop runs at most once.
func (l *Loop) Start(ctx context.Context) {
	if !l.claim() {
		return
	}
	go l.run(ctx)
}

// Run runs the loop on the calling goroutine until ctx is done or Stop is
// called.
func (l *Loop) Run(ctx context.Context) {
	if !l.claim() {
		return
	}
	l.run(ctx)
}

func (l *Loop) claim() bool {
	if !l.started.CompareAndSwap(false, true) {
		if debugLog != nil {
			debugLog("[EventLoop] already started")
		}
		return false
	}
	l.running.Store(true)
	return true
}

// Stop ends the loop after the callback in progress
func (l *Loop) Stop() {
	if l.running.CompareAndSwap(true, false) {
		// wake a loop blocked on an empty queue
		select {
		case l.queue <- nil:
		default:
		}
	}
}

// IsRunning returns whether the loop is running
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Done is closed once the loop has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Processed returns the number of callbacks run so far
func (l *Loop) Processed() int64 {
	return l.ran.Load()
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	defer l.running.Store(false)

	for l.running.Load() {
		var fn func()
		select {
		case <-ctx.Done():
			return
		case fn = <-l.queue:
		}
		if fn == nil {
			continue
		}

		// run everything already queued as one batch
		batch := []func(){fn}
	drain:
		for {
			select {
			case f := <-l.queue:
				if f != nil {
					batch = append(batch, f)
				}
			default:
				break drain
			}
		}
		for _, f := range batch {
			if !l.running.Load() || !l.call(f) {
				return
			}
		}
	}
}

func (l *Loop) call(fn func()) (ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("callback panic: %v\n%s", r, debug.Stack())
			ok = l.onError != nil && l.onError(msg)
		}
	}()
	fn()
	l.ran.Add(1)
	return ok
}
