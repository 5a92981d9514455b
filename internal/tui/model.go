// Package tui is the terminal host: a bubbletea program drawing the main
// view and the thumbnail side by side as character rasters, with the scope
// rectangle overlaid on the thumbnail.
package tui

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/graphscope/internal/config"
	"github.com/recera/graphscope/internal/raster"
	"github.com/recera/graphscope/pkg/capture"
	"github.com/recera/graphscope/pkg/payload"
	"github.com/recera/graphscope/pkg/session"
	"github.com/recera/graphscope/pkg/surface"
	"github.com/recera/graphscope/pkg/viewport"
)

const (
	// A terminal cell stands for cellWidth x cellHeight container pixels
	cellWidth  = 8
	cellHeight = 16

	rasterSide = 1024
	panCells   = 4
	zoomStep   = 1.25
)

// Options configures a Model
type Options struct {
	Path   string
	Config *config.Config
	// Changes delivers a value whenever Path changed on disk; nil disables
	// reloading on change.
	Changes <-chan struct{}
}

// Messages
type loadedMsg struct {
	data []byte
	img  *raster.Image
	err  error
}

type changedMsg struct{}

// Model represents the viewer state
type Model struct {
	// Window dimensions
	width  int
	height int
	lay    layout

	path    string
	cfg     *config.Config
	changes <-chan struct{}

	registry *payload.Registry
	loader   *surface.Loader
	sess     *session.Session
	input    *mouseInput
	image    *raster.Image

	// Main pane drag state
	dragging bool
	last     viewport.Point

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	loading bool
	reloads int
	err     error
}

// NewModel creates a viewer for opts.Path
func NewModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	registry := payload.NewRegistry()
	loader := surface.NewLoader(registry, cfg.SurfaceLayout())
	loader.Immediate = true
	loader.SetOptions(session.RoleMain, cfg.MainOptions())

	input := &mouseInput{}
	sess := session.New(session.Options{
		Store:            registry,
		Loader:           loader,
		GlobalInput:      input,
		Engine:           cfg.Engine(),
		Clamp:            cfg.ClampPolicy(),
		WheelSensitivity: cfg.Viewer.Sensitivity,
	})

	return Model{
		path:     opts.Path,
		cfg:      cfg,
		changes:  opts.Changes,
		registry: registry,
		loader:   loader,
		sess:     sess,
		input:    input,
		keys:     DefaultKeyMap,
		help:     help.New(),
		spinner:  s,
		loading:  true,
	}
}

// Session returns the viewer's session
func (m Model) Session() *session.Session { return m.sess }

// Err returns the last load error
func (m Model) Err() error { return m.err }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.readFile(), m.waitForChange())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.image = msg.img
		m.load(msg.data)
		return m, nil

	case changedMsg:
		m.loading = true
		m.reloads++
		return m, tea.Batch(m.readFile(), m.waitForChange(), m.spinner.Tick)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	}
	return m, nil
}

// readFile reads and rasterizes the document off the update loop
func (m Model) readFile() tea.Cmd {
	path := m.path
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return loadedMsg{err: err}
		}
		img, err := raster.Rasterize(data, rasterSide)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{data: data, img: img}
	}
}

func (m Model) waitForChange() tea.Cmd {
	ch := m.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// load binds a freshly read document to the session
func (m *Model) load(data []byte) {
	m.dragging = false
	m.resize()
	err := m.sess.Load(payload.Payload{
		ID:        filepath.Base(m.path),
		Data:      data,
		MediaType: "image/svg+xml",
	})
	if err == nil && !m.sess.Ready() {
		err = m.sess.Err()
	}
	m.err = err
}

// resize recomputes the pane layout and re-fits both views
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	var vb viewport.Size
	if m.image != nil {
		vb = m.image.ViewBox
	}
	m.lay = computeLayout(m.width, m.height, m.cfg.Layout.ThumbColumns, m.footerRows(), vb)
	m.loader.SetContainerSize(session.RoleMain, m.lay.container(paneMain))
	m.loader.SetContainerSize(session.RoleThumb, m.lay.container(paneThumb))
	m.sess.Resize()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sess.Close()
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return nil

	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return tea.Batch(m.readFile(), m.spinner.Tick)
	}

	main := m.mainSurface()
	if main == nil {
		return nil
	}
	step := viewport.Point{X: panCells * cellWidth, Y: panCells * cellHeight}
	center := viewport.Point{X: main.Sizes().Width / 2, Y: main.Sizes().Height / 2}

	switch {
	case key.Matches(msg, m.keys.Up):
		main.PanBy(viewport.Point{Y: step.Y})
	case key.Matches(msg, m.keys.Down):
		main.PanBy(viewport.Point{Y: -step.Y})
	case key.Matches(msg, m.keys.Left):
		main.PanBy(viewport.Point{X: step.X})
	case key.Matches(msg, m.keys.Right):
		main.PanBy(viewport.Point{X: -step.X})
	case key.Matches(msg, m.keys.ZoomIn):
		main.ZoomAtPointBy(zoomStep, center)
	case key.Matches(msg, m.keys.ZoomOut):
		main.ZoomAtPointBy(1/zoomStep, center)
	case key.Matches(msg, m.keys.Reset):
		main.Reset()
	}
	return nil
}

// mainSurface returns the live main view, or nil before a document loaded
func (m *Model) mainSurface() *viewport.Headless {
	if !m.sess.Ready() {
		return nil
	}
	return m.loader.Surface(session.RoleMain)
}

// handleMouse routes a mouse event. While a thumbnail drag is captured every
// motion and the release go to the capture, wherever the pointer is.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	if h := m.input.handler; h != nil {
		p := m.lay.point(paneThumb, msg.X, msg.Y)
		ev := capture.PointerEvent{X: p.X, Y: p.Y}
		switch msg.Action {
		case tea.MouseActionMotion:
			ev.Buttons = buttons(msg)
			h.Move(ev)
		case tea.MouseActionRelease:
			h.Up(ev)
		}
		return
	}

	pane := m.lay.hit(msg.X, msg.Y)
	p := m.lay.point(pane, msg.X, msg.Y)
	switch pane {
	case paneThumb:
		switch {
		case isWheel(msg):
			m.sess.Wheel(p, wheelDelta(msg))
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			m.sess.PointerDown(capture.PointerEvent{X: p.X, Y: p.Y, Buttons: 1})
		}

	case paneMain:
		main := m.mainSurface()
		if main == nil {
			return
		}
		switch {
		case isWheel(msg):
			main.ZoomAtPointBy(viewport.WheelFactor(wheelDelta(msg), m.cfg.Viewer.Sensitivity), p)
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			m.dragging = true
			m.last = p
		}
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		if m.dragging {
			// drags past the pane edge keep panning
			p = m.lay.point(paneMain, msg.X, msg.Y)
			if main := m.mainSurface(); main != nil {
				main.PanBy(p.Sub(m.last))
			}
			m.last = p
		}
	case tea.MouseActionRelease:
		m.dragging = false
	}
}

func isWheel(msg tea.MouseMsg) bool {
	return msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown
}

// wheelDelta follows the DOM sign: negative is away from the user
func wheelDelta(msg tea.MouseMsg) float64 {
	if msg.Button == tea.MouseButtonWheelUp {
		return -1
	}
	return 1
}

func buttons(msg tea.MouseMsg) int {
	if msg.Button == tea.MouseButtonNone {
		return 0
	}
	return 1
}

// mouseInput routes captured events from the update loop to the capture
type mouseInput struct {
	handler capture.Handler
}

func (in *mouseInput) Grab(h capture.Handler) { in.handler = h }
func (in *mouseInput) Release()               { in.handler = nil }
