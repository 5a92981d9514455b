package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/recera/graphscope/internal/scenario"
	"github.com/recera/graphscope/pkg/debug"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10b981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ef4444")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))
)

func newSimulateCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "simulate SCENARIO...",
		Short: "Run scripted interaction scenarios headlessly",
		Long: `Runs each scenario file (YAML) against headless views and checks its
expectations. Exits non-zero if any scenario fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every step")

	return cmd
}

func runSimulate(cmd *cobra.Command, paths []string, verbose bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Debug {
		debug.EnableLogging()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	runner := scenario.NewRunner(cfg)
	failed := 0
	for _, path := range paths {
		sc, err := scenario.Load(path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s %s\n", errorStyle.Render("FAIL"), err)
			continue
		}

		report, err := runner.Run(ctx, sc)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s %s\n", errorStyle.Render("FAIL"), err)
		} else {
			fmt.Fprintf(out, "%s %s %s\n", successStyle.Render("PASS"), sc.Name,
				mutedStyle.Render(fmt.Sprintf("(%d steps, %d checks)", len(report.Steps), report.Checks)))
		}
		if verbose && report != nil {
			fmt.Fprint(out, mutedStyle.Render(report.String()))
			fmt.Fprintln(out)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
	}
	return nil
}
