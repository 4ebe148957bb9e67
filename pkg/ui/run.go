package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/accordion/pkg/accordion"
	"github.com/vanderheijden86/accordion/pkg/debug"
)

// RedirectLogs sends the process logger to logPath while the alt screen
// is active. The returned function restores stderr and closes the file.
func RedirectLogs(logPath string) (restore func(), err error) {
	if logPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

// Run shows the folder list until the user quits or ctx is cancelled.
func Run(ctx context.Context, list *accordion.Model, logPath string, opts ...Option) error {
	restore, err := RedirectLogs(logPath)
	if err != nil {
		return err
	}
	defer restore()

	m := NewModel(ctx, list, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
