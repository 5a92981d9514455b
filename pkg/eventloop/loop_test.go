package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoop_RunsInOrder(t *testing.T) {
	l := New(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	wg.Add(10)
	for i := 0; i < 10; i++ {
		i := i
		if !l.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			wg.Done()
		}) {
			t.Fatalf("Post %d rejected", i)
		}
	}

	l.Start(ctx)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("Expected callbacks in order, got %v", got)
		}
	}
	if l.Processed() != 10 {
		t.Errorf("Expected 10 processed, got %d", l.Processed())
	}
}

func TestLoop_PostRejects(t *testing.T) {
	l := New(1)
	if l.Post(nil) {
		t.Error("Expected nil callback to be rejected")
	}
	if !l.Post(func() {}) {
		t.Error("Expected first post to fit")
	}
	if l.Post(func() {}) {
		t.Error("Expected post on a full queue to be rejected")
	}
}

func TestLoop_Stop(t *testing.T) {
	l := New(4)
	l.Start(context.Background())
	if !l.IsRunning() {
		t.Fatal("Expected loop to be running")
	}

	l.Stop()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Loop did not exit after Stop")
	}
	if l.IsRunning() {
		t.Error("Expected loop to be stopped")
	}

	// a stopped loop does not restart
	l.Start(context.Background())
	if l.IsRunning() {
		t.Error("Expected Start after exit to be ignored")
	}
}

func TestLoop_StopSkipsRestOfBatch(t *testing.T) {
	l := New(4)
	var got []string
	l.Post(func() {
		got = append(got, "a")
		l.Stop()
	})
	l.Post(func() { got = append(got, "b") })
	l.Post(func() { got = append(got, "c") })

	l.Run(context.Background())
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("Expected only [a] to run, got %v", got)
	}
	if l.Processed() != 1 {
		t.Errorf("Expected 1 processed, got %d", l.Processed())
	}
}

func TestLoop_ContextCancel(t *testing.T) {
	l := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Loop did not exit after cancel")
	}
}

func TestLoop_PanicRecovery(t *testing.T) {
	l := New(4)
	var recovered interface{}
	l.SetErrorHandler(func(err interface{}) bool {
		recovered = err
		return true
	})

	ran := make(chan struct{})
	l.Post(func() { panic("boom") })
	l.Post(func() { close(ran) })
	l.Start(context.Background())
	defer l.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("Loop did not survive the panic")
	}
	if recovered == nil {
		t.Error("Expected error handler to receive the panic")
	}
}

func TestLoop_PanicWithoutHandlerStops(t *testing.T) {
	l := New(4)
	l.Post(func() { panic("boom") })
	l.Start(context.Background())

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Expected loop to exit after unhandled panic")
	}
}
