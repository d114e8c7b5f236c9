package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/eqviz/internal/shared"
	"github.com/desertthunder/eqviz/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultTUILog = "./tmp/eqviz-tui.log"

// TUI launches the interactive terminal dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logFile := r.config.Log.File
	if logFile == "" {
		logFile = defaultTUILog
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	dash, err := r.dashboard()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, dash)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
