package scenario

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/recera/graphscope/internal/config"
	"github.com/recera/graphscope/pkg/capture"
	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/scope"
	"github.com/recera/graphscope/pkg/session"
	"github.com/recera/graphscope/pkg/surface"
	"github.com/recera/graphscope/pkg/viewport"
)

// Runner runs scenarios with a fixed configuration
type Runner struct {
	cfg *config.Config
}

// NewRunner creates a runner; nil uses the default configuration
func NewRunner(cfg *config.Config) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Runner{cfg: cfg}
}

// Run runs sc with the default configuration
func Run(ctx context.Context, sc *Scenario) (*Report, error) {
	return NewRunner(nil).Run(ctx, sc)
}

// StepResult records the state after one step
type StepResult struct {
	Index     int
	Kind      string
	Scope     scope.Rect
	Pan       viewport.Point
	Capturing bool
}

// Report summarizes a run
type Report struct {
	Name     string
	Steps    []StepResult
	Checks   int
	Duration time.Duration
}

// String renders the report as a table
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d steps, %d checks in %v\n", r.Name, len(r.Steps), r.Checks, r.Duration.Round(time.Microsecond))
	for _, s := range r.Steps {
		fmt.Fprintf(&b, "  %2d %-8s scope=(%.2f,%.2f %.2fx%.2f) pan=(%.2f,%.2f)",
			s.Index, s.Kind, s.Scope.X, s.Scope.Y, s.Scope.Width, s.Scope.Height, s.Pan.X, s.Pan.Y)
		if s.Capturing {
			b.WriteString(" capturing")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// input routes captured pointer events like a document-level listener
type input struct {
	handler capture.Handler
}

func (in *input) Grab(h capture.Handler) { in.handler = h }
func (in *input) Release()               { in.handler = nil }

type run struct {
	sc       *Scenario
	doc      []byte
	registry *payload.Registry
	loader   *surface.Loader
	input    *input
	sess     *session.Session
}

// Run runs sc. A failed expectation stops the run and returns the partial
// report with an error wrapping ErrExpectation.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	start := time.Now()
	report := &Report{Name: sc.Name}

	doc, err := sc.Document()
	if err != nil {
		return report, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	layout := r.cfg.SurfaceLayout()
	if sc.Layout != nil {
		if !sc.Layout.Main.Empty() {
			layout.Main = sc.Layout.Main
		}
		if !sc.Layout.Thumb.Empty() {
			layout.Thumb = sc.Layout.Thumb
		}
	}
	clamp := r.cfg.ClampPolicy()
	if sc.Clamp != "" {
		extent, err := viewport.ParseExtent(sc.Clamp)
		if err != nil {
			return report, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		clamp.Extent = extent
	}

	st := &run{sc: sc, doc: doc, registry: payload.NewRegistry(), input: &input{}}
	st.loader = surface.NewLoader(st.registry, layout)
	st.loader.Immediate = true
	st.loader.SetOptions(session.RoleMain, r.cfg.MainOptions())
	st.sess = session.New(session.Options{
		Store:            st.registry,
		Loader:           st.loader,
		GlobalInput:      st.input,
		Engine:           r.cfg.Engine(),
		Clamp:            clamp,
		WheelSensitivity: r.cfg.Viewer.Sensitivity,
	})
	defer st.sess.Close()

	if err := st.load(); err != nil {
		return report, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := st.apply(step); err != nil {
			return report, fmt.Errorf("scenario %s step %d (%s): %w", sc.Name, i, step.Kind(), err)
		}
		if step.Expect != nil {
			report.Checks++
			if err := st.check(step.Expect); err != nil {
				return report, fmt.Errorf("scenario %s step %d: %w", sc.Name, i, err)
			}
		}
		report.Steps = append(report.Steps, st.result(i, step.Kind()))
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (st *run) load() error {
	if err := st.sess.Load(payload.Payload{ID: st.sc.Name, Data: st.doc, MediaType: "image/svg+xml"}); err != nil {
		return err
	}
	if !st.sess.Ready() {
		return fmt.Errorf("session not ready: %w", st.sess.Err())
	}
	return nil
}

func (st *run) apply(step Step) error {
	switch {
	case step.Pan != nil:
		st.sess.Main().PanTo(*step.Pan)

	case step.Zoom != nil:
		z, ok := st.sess.Main().(viewport.Zoomer)
		if !ok {
			return fmt.Errorf("main view cannot zoom")
		}
		sizes := st.sess.Main().Sizes()
		p := viewport.Point{X: sizes.Width / 2, Y: sizes.Height / 2}
		if step.Zoom.X != nil {
			p.X = *step.Zoom.X
		}
		if step.Zoom.Y != nil {
			p.Y = *step.Zoom.Y
		}
		z.ZoomAtPointBy(step.Zoom.Factor, p)

	case step.Resize != nil:
		if !step.Resize.Main.Empty() {
			st.loader.SetContainerSize(session.RoleMain, step.Resize.Main)
		}
		if !step.Resize.Thumb.Empty() {
			st.loader.SetContainerSize(session.RoleThumb, step.Resize.Thumb)
		}
		st.sess.Resize()

	case step.Pointer != nil:
		p := step.Pointer
		ev := capture.PointerEvent{ID: p.ID, X: p.X, Y: p.Y, Buttons: p.Buttons}
		switch p.Action {
		case "down":
			st.sess.PointerDown(ev)
		case "move":
			if st.input.handler != nil {
				st.input.handler.Move(ev)
			}
		case "up":
			if st.input.handler != nil {
				st.input.handler.Up(ev)
			}
		}

	case step.Wheel != nil:
		st.sess.Wheel(viewport.Point{X: step.Wheel.X, Y: step.Wheel.Y}, step.Wheel.Delta)

	case step.Reload:
		return st.load()
	}
	return nil
}

func (st *run) check(e *Expect) error {
	tol := e.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	var failures []string
	if e.Scope != nil {
		got, ok := st.sess.Scope()
		if !ok {
			failures = append(failures, "no scope rendered")
		} else if !near(got.X, e.Scope.X, tol) || !near(got.Y, e.Scope.Y, tol) ||
			!near(got.Width, e.Scope.Width, tol) || !near(got.Height, e.Scope.Height, tol) {
			failures = append(failures, fmt.Sprintf("scope %+v, expected %+v", got, *e.Scope))
		}
	}
	if e.Pan != nil {
		got := st.sess.Main().Pan()
		if !near(got.X, e.Pan.X, tol) || !near(got.Y, e.Pan.Y, tol) {
			failures = append(failures, fmt.Sprintf("pan %+v, expected %+v", got, *e.Pan))
		}
	}
	if e.Capturing != nil && st.sess.Capturing() != *e.Capturing {
		failures = append(failures, fmt.Sprintf("capturing %v, expected %v", st.sess.Capturing(), *e.Capturing))
	}
	if e.Live != nil && st.registry.Live() != *e.Live {
		failures = append(failures, fmt.Sprintf("live handles %d, expected %d", st.registry.Live(), *e.Live))
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(failures, "; "))
	}
	return nil
}

func (st *run) result(i int, kind string) StepResult {
	res := StepResult{Index: i, Kind: kind, Capturing: st.sess.Capturing()}
	res.Scope, _ = st.sess.Scope()
	if m := st.sess.Main(); m != nil {
		res.Pan = m.Pan()
	}
	return res
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
