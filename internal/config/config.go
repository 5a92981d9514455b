package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/recera/graphscope/pkg/scope"
	"github.com/recera/graphscope/pkg/surface"
	"github.com/recera/graphscope/pkg/viewport"
)

// FileName is the configuration file looked up in a project directory
const FileName = "graphscope.json"

// ErrInvalid is wrapped by every validation error
var ErrInvalid = errors.New("invalid configuration")

// Config represents the graphscope.json configuration
type Config struct {
	// Main viewer pan/zoom limits
	Viewer *ViewerConfig `json:"viewer,omitempty"`

	// Scope rectangle geometry
	Scope *ScopeConfig `json:"scope,omitempty"`

	// Pan clamping
	Clamp *ClampConfig `json:"clamp,omitempty"`

	// Container sizes for headless hosts
	Layout *LayoutConfig `json:"layout,omitempty"`

	// Development server configuration
	Dev *DevConfig `json:"dev,omitempty"`

	// Whether to install debug log hooks
	Debug bool `json:"debug,omitempty"`
}

// ViewerConfig contains main view zoom settings
type ViewerConfig struct {
	MinZoom float64 `json:"minZoom,omitempty"`
	MaxZoom float64 `json:"maxZoom,omitempty"`

	// Zoom factor step per wheel notch or key press
	Sensitivity float64 `json:"sensitivity,omitempty"`
}

// ScopeConfig contains scope rectangle settings
type ScopeConfig struct {
	// Inset shrinks the rectangle on every side; nil keeps the default
	Inset   *float64 `json:"inset,omitempty"`
	MinSize float64  `json:"minSize,omitempty"`
}

// ClampConfig selects the pan clamp extent: "viewbox" or "content"
type ClampConfig struct {
	Extent string `json:"extent,omitempty"`
}

// LayoutConfig contains container sizes in pixels
type LayoutConfig struct {
	Main  viewport.Size `json:"main"`
	Thumb viewport.Size `json:"thumb"`

	// Width of the thumbnail pane in terminal cells
	ThumbColumns int `json:"thumbColumns,omitempty"`
}

// DevConfig contains development server configuration
type DevConfig struct {
	// Server port
	Port int `json:"port,omitempty"`

	// Server host
	Host string `json:"host,omitempty"`

	// Directory holding app.wasm and wasm_exec.js
	PublicDir string `json:"publicDir,omitempty"`

	// Debounce window for file change events, in milliseconds
	DebounceMs int `json:"debounceMs,omitempty"`
}

// Load loads configuration from graphscope.json in dir
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile loads configuration from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

// Save saves configuration to graphscope.json in dir
func Save(config *Config, dir string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	main := viewport.MainOptions()
	inset := scope.DefaultInset
	layout := surface.DefaultLayout()
	return &Config{
		Viewer: &ViewerConfig{
			MinZoom:     main.MinZoom,
			MaxZoom:     main.MaxZoom,
			Sensitivity: main.ZoomScaleSensitivity,
		},
		Scope: &ScopeConfig{
			Inset:   &inset,
			MinSize: scope.DefaultMinSize,
		},
		Clamp: &ClampConfig{
			Extent: viewport.ExtentViewBox.String(),
		},
		Layout: &LayoutConfig{
			Main:         layout.Main,
			Thumb:        layout.Thumb,
			ThumbColumns: 32,
		},
		Dev: &DevConfig{
			Port:       8080,
			Host:       "localhost",
			PublicDir:  "public",
			DebounceMs: 100,
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Viewer == nil {
		config.Viewer = defaults.Viewer
	} else {
		if config.Viewer.MinZoom == 0 {
			config.Viewer.MinZoom = defaults.Viewer.MinZoom
		}
		if config.Viewer.MaxZoom == 0 {
			config.Viewer.MaxZoom = defaults.Viewer.MaxZoom
		}
		if config.Viewer.Sensitivity == 0 {
			config.Viewer.Sensitivity = defaults.Viewer.Sensitivity
		}
	}

	if config.Scope == nil {
		config.Scope = defaults.Scope
	} else {
		if config.Scope.Inset == nil {
			config.Scope.Inset = defaults.Scope.Inset
		}
		if config.Scope.MinSize == 0 {
			config.Scope.MinSize = defaults.Scope.MinSize
		}
	}

	if config.Clamp == nil {
		config.Clamp = defaults.Clamp
	} else if config.Clamp.Extent == "" {
		config.Clamp.Extent = defaults.Clamp.Extent
	}

	if config.Layout == nil {
		config.Layout = defaults.Layout
	} else {
		if config.Layout.Main == (viewport.Size{}) {
			config.Layout.Main = defaults.Layout.Main
		}
		if config.Layout.Thumb == (viewport.Size{}) {
			config.Layout.Thumb = defaults.Layout.Thumb
		}
		if config.Layout.ThumbColumns == 0 {
			config.Layout.ThumbColumns = defaults.Layout.ThumbColumns
		}
	}

	if config.Dev == nil {
		config.Dev = defaults.Dev
	} else {
		if config.Dev.Port == 0 {
			config.Dev.Port = defaults.Dev.Port
		}
		if config.Dev.Host == "" {
			config.Dev.Host = defaults.Dev.Host
		}
		if config.Dev.PublicDir == "" {
			config.Dev.PublicDir = defaults.Dev.PublicDir
		}
		if config.Dev.DebounceMs == 0 {
			config.Dev.DebounceMs = defaults.Dev.DebounceMs
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := c.Viewer
	if v.MinZoom <= 0 || v.MaxZoom < v.MinZoom {
		return fmt.Errorf("%w: viewer zoom range [%v, %v]", ErrInvalid, v.MinZoom, v.MaxZoom)
	}
	if v.Sensitivity <= 0 {
		return fmt.Errorf("%w: viewer sensitivity %v", ErrInvalid, v.Sensitivity)
	}
	if *c.Scope.Inset < 0 || c.Scope.MinSize <= 0 {
		return fmt.Errorf("%w: scope inset %v, minSize %v", ErrInvalid, *c.Scope.Inset, c.Scope.MinSize)
	}
	if _, err := viewport.ParseExtent(c.Clamp.Extent); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Layout.Main.Empty() || c.Layout.Thumb.Empty() {
		return fmt.Errorf("%w: layout sizes must be positive", ErrInvalid)
	}
	if c.Layout.ThumbColumns < 4 {
		return fmt.Errorf("%w: thumbColumns %d", ErrInvalid, c.Layout.ThumbColumns)
	}
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return fmt.Errorf("%w: dev port %d", ErrInvalid, c.Dev.Port)
	}
	if c.Dev.DebounceMs < 0 {
		return fmt.Errorf("%w: dev debounceMs %d", ErrInvalid, c.Dev.DebounceMs)
	}
	return nil
}

// Engine returns the scope engine described by the configuration
func (c *Config) Engine() *scope.Engine {
	return &scope.Engine{Inset: *c.Scope.Inset, MinSize: c.Scope.MinSize}
}

// ClampPolicy returns the pan clamp policy
func (c *Config) ClampPolicy() viewport.ClampPolicy {
	extent, _ := viewport.ParseExtent(c.Clamp.Extent)
	return viewport.ClampPolicy{Extent: extent}
}

// MainOptions returns the main view adapter options
func (c *Config) MainOptions() viewport.Options {
	o := viewport.MainOptions()
	o.MinZoom = c.Viewer.MinZoom
	o.MaxZoom = c.Viewer.MaxZoom
	o.ZoomScaleSensitivity = c.Viewer.Sensitivity
	return o
}

// SurfaceLayout returns the container sizes for headless surfaces
func (c *Config) SurfaceLayout() surface.Layout {
	return surface.Layout{Main: c.Layout.Main, Thumb: c.Layout.Thumb}
}

// Addr returns the dev server listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Dev.Host, c.Dev.Port)
}
