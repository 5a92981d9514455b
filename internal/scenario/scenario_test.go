package scenario

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_Testdata(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil || len(files) == 0 {
		t.Fatalf("No scenarios found: %v", err)
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			sc, err := Load(file)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			report, err := Run(context.Background(), sc)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if len(report.Steps) != len(sc.Steps) || report.Checks == 0 {
				t.Errorf("Expected %d steps with checks, got %d steps / %d checks",
					len(sc.Steps), len(report.Steps), report.Checks)
			}
		})
	}
}

func TestRun_FailedExpectation(t *testing.T) {
	sc, err := Parse([]byte(`
name: wrong
file: graph.svg
steps:
  - zoom: {factor: 2}
  - expect:
      pan: {x: 1, y: 1}
`), "testdata")
	if err != nil {
		t.Fatal(err)
	}

	report, err := Run(context.Background(), sc)
	if !errors.Is(err, ErrExpectation) {
		t.Fatalf("Expected ErrExpectation, got %v", err)
	}
	if !strings.Contains(err.Error(), "step 1") {
		t.Errorf("Expected the failing step index in %q", err)
	}
	if len(report.Steps) != 1 {
		t.Errorf("Expected partial report with 1 step, got %d", len(report.Steps))
	}
}

func TestRun_UndecodableDocument(t *testing.T) {
	sc, err := Parse([]byte("name: broken\nsvg: 'not an svg'\nsteps: []\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Run(context.Background(), sc); err == nil {
		t.Error("Expected a load error")
	}
}

func TestRun_Cancelled(t *testing.T) {
	sc, err := Load(filepath.Join("testdata", "drag.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, sc); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no document", "name: x\nsteps: []\n"},
		{"empty step", "svg: '<svg/>'\nsteps:\n  - {}\n"},
		{"bad pointer action", "svg: '<svg/>'\nsteps:\n  - pointer: {action: click}\n"},
		{"zero zoom", "svg: '<svg/>'\nsteps:\n  - zoom: {factor: 0}\n"},
		{"not yaml", "steps: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc), ""); err == nil {
				t.Error("Expected a parse error")
			}
		})
	}
}

func TestReport_String(t *testing.T) {
	sc, _ := Load(filepath.Join("testdata", "drag.yaml"))
	report, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}
	out := report.String()
	if !strings.HasPrefix(out, "thumbnail drag:") || !strings.Contains(out, "capturing") {
		t.Errorf("Unexpected report:\n%s", out)
	}
}
