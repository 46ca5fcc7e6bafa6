package tui

import (
	"context"
	"errors"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/springbox/internal/sim"
)

// Run opens the interactive sandbox and blocks until the user quits.
// Standard log output goes to logPath, or nowhere when it is empty, so
// the terminal is left to the program.
func Run(ctx context.Context, build sim.Factory, opts Options, logPath string) error {
	if logPath != "" {
		f, err := tea.LogToFile(logPath, "springbox")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	m, err := New(ctx, build, opts)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if err := m.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
