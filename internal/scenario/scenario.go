// Package scenario replays scripted interactions against a headless session
// and checks expectations along the way.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/recera/graphscope/pkg/scope"
	"github.com/recera/graphscope/pkg/surface"
	"github.com/recera/graphscope/pkg/viewport"
)

// ErrExpectation is wrapped by every failed expectation
var ErrExpectation = errors.New("expectation failed")

// DefaultTolerance is the absolute tolerance for float comparisons
const DefaultTolerance = 1e-6

// Scenario is one scripted interaction sequence
type Scenario struct {
	Name string `yaml:"name"`
	// File is an svg path, relative to the scenario file
	File string `yaml:"file,omitempty"`
	// SVG is an inline document used when File is empty
	SVG    string          `yaml:"svg,omitempty"`
	Layout *surface.Layout `yaml:"layout,omitempty"`
	// Clamp overrides the clamp extent ("viewbox" or "content")
	Clamp string `yaml:"clamp,omitempty"`
	Steps []Step `yaml:"steps"`

	dir string
}

// Step is one action or expectation. Exactly one field is set.
type Step struct {
	Pan     *viewport.Point `yaml:"pan,omitempty"`
	Zoom    *ZoomStep       `yaml:"zoom,omitempty"`
	Resize  *ResizeStep     `yaml:"resize,omitempty"`
	Pointer *PointerStep    `yaml:"pointer,omitempty"`
	Wheel   *WheelStep      `yaml:"wheel,omitempty"`
	Reload  bool            `yaml:"reload,omitempty"`
	Expect  *Expect         `yaml:"expect,omitempty"`
}

// ZoomStep zooms the main view by Factor around a container point. Without
// a point the container center is used.
type ZoomStep struct {
	Factor float64  `yaml:"factor"`
	X      *float64 `yaml:"x,omitempty"`
	Y      *float64 `yaml:"y,omitempty"`
}

// ResizeStep changes container sizes; zero sizes are left unchanged
type ResizeStep struct {
	Main  viewport.Size `yaml:"main"`
	Thumb viewport.Size `yaml:"thumb"`
}

// PointerStep is a pointer event in thumbnail container pixels
type PointerStep struct {
	Action  string  `yaml:"action"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Buttons int     `yaml:"buttons"`
	ID      int     `yaml:"id"`
}

// WheelStep is a wheel event over the thumbnail
type WheelStep struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Delta float64 `yaml:"delta"`
}

// Expect checks the session state. Unset fields are not checked.
type Expect struct {
	Scope     *scope.Rect     `yaml:"scope,omitempty"`
	Pan       *viewport.Point `yaml:"pan,omitempty"`
	Capturing *bool           `yaml:"capturing,omitempty"`
	// Live is the number of unreleased payload handles
	Live      *int    `yaml:"live,omitempty"`
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// Kind names the step's action
func (s Step) Kind() string {
	switch {
	case s.Pan != nil:
		return "pan"
	case s.Zoom != nil:
		return "zoom"
	case s.Resize != nil:
		return "resize"
	case s.Pointer != nil:
		return "pointer"
	case s.Wheel != nil:
		return "wheel"
	case s.Reload:
		return "reload"
	case s.Expect != nil:
		return "expect"
	default:
		return ""
	}
}

// Load reads a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	return sc, nil
}

// Parse decodes a scenario. dir resolves a relative File.
func Parse(data []byte, dir string) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	sc.dir = dir

	if sc.File == "" && sc.SVG == "" {
		return nil, errors.New("scenario needs a file or an inline svg")
	}
	for i, step := range sc.Steps {
		if step.Kind() == "" {
			return nil, fmt.Errorf("step %d: empty step", i)
		}
		if p := step.Pointer; p != nil {
			switch p.Action {
			case "down", "move", "up":
			default:
				return nil, fmt.Errorf("step %d: unknown pointer action %q", i, p.Action)
			}
		}
		if z := step.Zoom; z != nil && !(z.Factor > 0) {
			return nil, fmt.Errorf("step %d: zoom factor must be positive", i)
		}
	}
	return &sc, nil
}

// Document returns the svg bytes the scenario loads
func (sc *Scenario) Document() ([]byte, error) {
	if sc.File == "" {
		return []byte(sc.SVG), nil
	}
	path := sc.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(sc.dir, path)
	}
	return os.ReadFile(path)
}
