package devserver

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/recera/graphscope/internal/cache"
)

// ClientPackage is the wasm client's import path relative to the module root
const ClientPackage = "./app/client"

// sourceDirs are hashed into the build cache key
var sourceDirs = []string{"app", "pkg"}

// Build compiles the wasm client into the public directory, reusing a cached
// artifact when the sources are unchanged
func (s *Server) Build(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	out := s.publicPath("app.wasm")
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}

	var key string
	if s.cache != nil {
		k, err := s.buildKey()
		if err != nil {
			log.Printf("[DevServer] Cache key generation failed: %v", err)
		} else if data, ok := s.cache.Get(k); ok {
			if err := os.WriteFile(out, data, 0644); err == nil {
				log.Println("[DevServer] Using cached wasm build")
				s.lastBuild = time.Now()
				return nil
			}
		} else {
			key = k
		}
	}

	log.Printf("[DevServer] Building %s...", ClientPackage)
	start := time.Now()
	cmd := exec.CommandContext(ctx, "go", "build", "-o", out, ClientPackage)
	cmd.Dir = s.root
	cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("wasm build failed: %w\nOutput: %s", err, output)
	}
	s.lastBuild = time.Now()

	data, err := os.ReadFile(out)
	if err != nil {
		return err
	}
	log.Printf("[DevServer] Built app.wasm (%.2f KB) in %v", float64(len(data))/1024, time.Since(start).Round(time.Millisecond))

	if s.cache != nil && key != "" {
		if err := s.cache.Put(key, data); err != nil {
			log.Printf("[DevServer] Failed to cache build: %v", err)
		}
	}
	return nil
}

// LastBuild returns when the client was last built, zero if never
func (s *Server) LastBuild() time.Time {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	return s.lastBuild
}

func (s *Server) buildKey() (string, error) {
	return cache.SourceKey(s.root, sourceDirs, goVersion(), "js/wasm", ClientPackage)
}

func goVersion() string {
	output, err := exec.Command("go", "env", "GOVERSION").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}
