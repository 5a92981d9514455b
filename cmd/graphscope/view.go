package main

import (
	"context"
	"io"
	"log"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/graphscope/internal/tui"
	"github.com/recera/graphscope/internal/watch"
	"github.com/recera/graphscope/pkg/debug"
)

func newViewCommand() *cobra.Command {
	var watchFile bool
	var debugLog string

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "View an svg graph in the terminal",
		Long: `Opens FILE in a terminal viewer with the main view on the left and the
thumbnail on the right. Drag the scope rectangle or use the wheel over the
thumbnail to navigate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(args[0], watchFile, debugLog)
		},
	}

	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Reload when FILE changes")
	cmd.Flags().StringVar(&debugLog, "debug-log", "", "Write debug logging to this file")

	return cmd
}

func runView(file string, watchFile bool, debugLog string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the alt screen owns stdout; logs go to a file or nowhere
	if debugLog != "" {
		f, err := tea.LogToFile(debugLog, "graphscope")
		if err != nil {
			return err
		}
		defer f.Close()
		debug.EnableLogging()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	opts := tui.Options{Path: file, Config: cfg}
	if watchFile {
		w, err := watch.New(file, time.Duration(cfg.Dev.DebounceMs)*time.Millisecond)
		if err != nil {
			return err
		}
		defer w.Close()
		opts.Changes = w.Events(ctx)
	}

	return tui.Run(ctx, opts)
}
