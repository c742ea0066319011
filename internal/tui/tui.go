// Package tui implements the interactive table editor using Bubble Tea.
package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrNoTerminal is returned by Run when stdout is not a terminal.
var ErrNoTerminal = errors.New("the editor needs a terminal; use 'tipy show' or 'tipy edit' in scripts")

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run starts the program in alternate screen mode with mouse support and
// closes the app's session when it exits.
func Run(ctx context.Context, app *App) error {
	defer func() {
		if err := app.Close(); err != nil {
			app.logger.Warn("failed to close session", "error", err)
		}
	}()
	if !IsTTY() {
		return ErrNoTerminal
	}
	p := tea.NewProgram(app,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
