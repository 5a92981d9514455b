package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recera/graphscope/internal/cache"
	"github.com/recera/graphscope/internal/devserver"
	"github.com/recera/graphscope/pkg/debug"
)

func newServeCommand() *cobra.Command {
	var port int
	var host string
	var public string
	var build bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve FILE",
		Short: "Serve an svg graph to the browser viewer",
		Long: `Starts a development server for the browser viewer. FILE is served as
/graph.svg and watched; connected browsers reload it on every change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(args[0], host, port, public, build, noCache)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run the dev server on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind the dev server to (default from config)")
	cmd.Flags().StringVar(&public, "public", "", "Directory holding app.wasm and wasm_exec.js")
	cmd.Flags().BoolVar(&build, "build", false, "Build the wasm client before serving")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Always rebuild the wasm client")

	return cmd
}

func runServe(file, host string, port int, public string, build, noCache bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// CLI takes precedence
	if port != 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if public != "" {
		cfg.Dev.PublicDir = public
	}
	if cfg.Debug {
		debug.EnableLogging()
	}

	opts := devserver.Options{File: file, Config: cfg, Build: build}
	if build && !noCache {
		buildCache, err := cache.New(cache.DefaultDir())
		if err != nil {
			log.Printf("[DevServer] Failed to initialize build cache: %v", err)
		} else {
			opts.Cache = buildCache
		}
	}

	srv, err := devserver.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
