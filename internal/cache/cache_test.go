package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCache_GetPut(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	key := Key("app.wasm", "go1.23")
	data := []byte("\x00asm wasm bytes")

	if err := cache.Put(key, data); err != nil {
		t.Fatalf("Failed to put data: %v", err)
	}

	retrieved, found := cache.Get(key)
	if !found {
		t.Fatal("Data not found in cache")
	}
	if !bytes.Equal(retrieved, data) {
		t.Errorf("Retrieved data doesn't match: got %q, want %q", retrieved, data)
	}

	if _, found := cache.Get("non-existent"); found {
		t.Error("Found non-existent key")
	}

	stats := cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("Expected 1 hit, 1 miss, 1 entry, got %+v", stats)
	}
}

func TestCache_Persistence(t *testing.T) {
	dir := t.TempDir()
	cache, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	if err := cache.Put("persist", []byte("kept")); err != nil {
		t.Fatalf("Failed to put data: %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to reopen cache: %v", err)
	}
	data, found := reopened.Get("persist")
	if !found || string(data) != "kept" {
		t.Errorf("Expected persisted entry, got %q (found=%v)", data, found)
	}
}

func TestCache_Replace(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	cache.Put("k", []byte("one"))
	first := cache.index.Entries["k"].Path
	cache.Put("k", []byte("two"))

	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Error("Expected the replaced artifact to be removed")
	}
	data, _ := cache.Get("k")
	if string(data) != "two" {
		t.Errorf("Expected %q, got %q", "two", data)
	}
}

func TestCache_CorruptArtifact(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	cache.Put("k", []byte("original"))
	os.WriteFile(cache.index.Entries["k"].Path, []byte("tampered"), 0644)

	if _, found := cache.Get("k"); found {
		t.Error("Expected a tampered artifact to miss")
	}
	if cache.GetStats().Entries != 0 {
		t.Error("Expected the tampered entry to be dropped")
	}
}

func TestCache_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, indexFile), []byte("{not json"), 0644)

	cache, err := New(dir)
	if err != nil {
		t.Fatalf("Expected a corrupt index to be ignored, got %v", err)
	}
	if cache.GetStats().Entries != 0 {
		t.Error("Expected an empty cache")
	}
}

func TestCache_Clear(t *testing.T) {
	cache, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	cache.Put("a", []byte("1"))
	cache.Put("b", []byte("2"))

	if err := cache.Clear(); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	if _, found := cache.Get("a"); found {
		t.Error("Expected cleared entries to miss")
	}
	if err := cache.Put("c", []byte("3")); err != nil {
		t.Errorf("Expected Put after Clear to work, got %v", err)
	}
}

func TestKey(t *testing.T) {
	if Key("a", "b") == Key("ab") {
		t.Error("Expected input boundaries to change the key")
	}
	if Key("x") != Key("x") {
		t.Error("Expected keys to be deterministic")
	}
}

func TestSourceKey(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, rel)
		os.MkdirAll(filepath.Dir(path), 0755)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("go.mod", "module example\n")
	write("app/client/main.go", "package main\n")
	write("app/client/.hidden/x.go", "package hidden\n")

	k1, err := SourceKey(root, []string{"app"}, "go1.23")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	write("app/client/.hidden/x.go", "package hidden // changed\n")
	k2, _ := SourceKey(root, []string{"app"}, "go1.23")
	if k1 != k2 {
		t.Error("Expected hidden directories to be ignored")
	}

	write("app/client/main.go", "package main // changed\n")
	k3, _ := SourceKey(root, []string{"app"}, "go1.23")
	if k3 == k1 {
		t.Error("Expected a source change to change the key")
	}

	k4, _ := SourceKey(root, []string{"app"}, "go1.24")
	if k4 == k3 {
		t.Error("Expected the extra inputs to change the key")
	}
}
