package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the viewer and blocks until it quits or ctx is done
func Run(ctx context.Context, opts Options) error {
	if !isatty() {
		return fmt.Errorf("not running in a terminal, use the simulate command for scripted runs")
	}

	p := tea.NewProgram(
		NewModel(opts),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := final.(Model); ok {
		m.sess.Close()
	}
	return nil
}

func isatty() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
