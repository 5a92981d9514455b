package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recera/graphscope/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimulate(t *testing.T) {
	out, err := execute(t, "simulate",
		"../../internal/scenario/testdata/drag.yaml",
		"../../internal/scenario/testdata/resize.yaml")
	if err != nil {
		t.Fatalf("Unexpected error: %v\n%s", err, out)
	}
	if strings.Count(out, "PASS") != 2 {
		t.Errorf("Expected 2 passing scenarios, got:\n%s", out)
	}
}

func TestSimulate_Failure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	os.WriteFile(path, []byte(`name: bad
svg: '<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400 300"></svg>'
steps:
  - pan: {x: 0, y: 0}
    expect:
      pan: {x: 5, y: 5}
`), 0644)

	out, err := execute(t, "simulate", path, filepath.Join(dir, "missing.yaml"))
	if err == nil {
		t.Fatal("Expected failing scenarios to return an error")
	}
	if !strings.Contains(err.Error(), "2 of 2") {
		t.Errorf("Expected both scenarios to fail, got %v", err)
	}
	if strings.Count(out, "FAIL") != 2 {
		t.Errorf("Expected 2 FAIL lines, got:\n%s", out)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "init", dir); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Expected a loadable config, got %v", err)
	}
	if cfg.Dev.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Dev.Port)
	}

	if _, err := execute(t, "init", dir); err == nil {
		t.Error("Expected init to refuse overwriting")
	}
	if _, err := execute(t, "init", "--force", dir); err != nil {
		t.Errorf("Expected --force to overwrite, got %v", err)
	}
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	os.WriteFile(path, []byte(`{"viewer": {"minZoom": 5, "maxZoom": 1}}`), 0644)

	_, err := execute(t, "simulate", "--config", path, "../../internal/scenario/testdata/drag.yaml")
	if err == nil {
		t.Error("Expected an invalid --config to fail")
	}
}
