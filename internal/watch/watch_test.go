package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.svg")
	if err := os.WriteFile(path, []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := w.Events(ctx)

	// unrelated files are ignored
	os.WriteFile(filepath.Join(dir, "other.svg"), []byte("x"), 0644)

	for i := 0; i < 5; i++ {
		os.WriteFile(path, []byte("<svg></svg>"), 0644)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a change notification")
	}

	select {
	case <-events:
		t.Error("Expected a single notification for one burst")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.svg")
	os.WriteFile(path, []byte("<svg/>"), 0644)

	w, err := New(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events := w.Events(ctx)
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("Expected no change before close")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected events channel to close on cancel")
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing", "graph.svg"), 0); err == nil {
		t.Error("Expected error for a missing directory")
	}
}
