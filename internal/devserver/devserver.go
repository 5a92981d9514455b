// Package devserver serves the browser host: the index page, the wasm client,
// the watched graph and a live-reload websocket.
package devserver

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/recera/graphscope/internal/cache"
	"github.com/recera/graphscope/internal/config"
	"github.com/recera/graphscope/internal/watch"
	"github.com/recera/graphscope/pkg/live"
)

//go:embed assets/index.html
var assets embed.FS

// GraphPath is the URL the client fetches the graph from
const GraphPath = "/graph.svg"

// Options configures a Server
type Options struct {
	// File is the svg served at GraphPath and watched for changes
	File   string
	Config *config.Config
	// Build compiles ./app/client to PublicDir/app.wasm before serving
	Build bool
	// Root is the module root used for builds (default ".")
	Root string
	// Cache holds previous wasm builds; nil builds every time
	Cache *cache.Cache
}

// Server is the development server
type Server struct {
	cfg   *config.Config
	file  string
	root  string
	build bool
	cache *cache.Cache
	live  *live.Server

	buildMu   sync.Mutex
	lastBuild time.Time
}

// New creates a server for opts.File
func New(opts Options) (*Server, error) {
	if _, err := os.Stat(opts.File); err != nil {
		return nil, fmt.Errorf("graph file: %w", err)
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	return &Server{
		cfg:   cfg,
		file:  opts.File,
		root:  root,
		build: opts.Build,
		cache: opts.Cache,
		live:  live.NewServer(),
	}, nil
}

// Live returns the live-reload server
func (s *Server) Live() *live.Server { return s.live }

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(live.Path, s.live.HandleWebSocket)
	mux.HandleFunc("/app.wasm", s.serveWASM)
	mux.HandleFunc("/wasm_exec.js", s.serveWasmExec)
	mux.HandleFunc(GraphPath, s.serveGraph)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", s.serveIndex)
	return mux
}

// Run builds the client if requested, then serves until ctx is done or the
// listener fails
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.build {
		if err := s.Build(ctx); err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}
	}

	debounce := time.Duration(s.cfg.Dev.DebounceMs) * time.Millisecond
	w, err := watch.New(s.file, debounce)
	if err != nil {
		return err
	}
	defer w.Close()
	go w.Run(ctx, func() { s.Reload() })

	srv := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.Handler(),
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		log.Println("[DevServer] Shutting down...")
		s.live.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[DevServer] Serving %s at http://%s", s.file, s.cfg.Addr())
	err = srv.ListenAndServe()
	cancel()
	<-stopped
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Reload tells every connected browser to refetch the graph and returns the
// new version
func (s *Server) Reload() uint64 {
	v := s.live.Broadcast(filepath.Base(s.file))
	log.Printf("[DevServer] %s changed (version %d)", filepath.Base(s.file), v)
	return v
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	content, err := assets.ReadFile("assets/index.html")
	if err != nil {
		http.Error(w, "index.html not embedded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(content)
}

func (s *Server) serveGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	content, err := os.ReadFile(s.file)
	if err != nil {
		log.Printf("[DevServer] Failed to read %s: %v", s.file, err)
		http.Error(w, "Graph not available", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml;charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(content)
}

func (s *Server) serveWASM(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/wasm")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, s.publicPath("app.wasm"))
}

func (s *Server) serveWasmExec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	// Prefer a copy next to the wasm; fall back to the toolchain's
	path := s.publicPath("wasm_exec.js")
	if _, err := os.Stat(path); err != nil {
		path = toolchainWasmExec()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "Failed to load wasm_exec.js", http.StatusInternalServerError)
		return
	}
	w.Write(content)
}

func (s *Server) publicPath(name string) string {
	dir := s.cfg.Dev.PublicDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.root, dir)
	}
	return filepath.Join(dir, name)
}

func toolchainWasmExec() string {
	output, err := exec.Command("go", "env", "GOROOT").Output()
	if err != nil {
		return ""
	}
	goroot := strings.TrimSpace(string(output))
	for _, rel := range []string{"lib/wasm/wasm_exec.js", "misc/wasm/wasm_exec.js"} {
		path := filepath.Join(goroot, rel)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
