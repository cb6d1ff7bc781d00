package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// Run boots the TUI program and blocks until it exits.
func Run(ctx context.Context, d Deps) error {
	m := newModel(ctx, d)
	if d.Files != nil && d.Config.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			m.log.Warn("file watcher unavailable", "err", err)
		} else {
			defer w.Close()
			// The store replaces the file on every save, so watch the directory.
			if err := w.Add(d.Files.Dir()); err != nil {
				m.log.Warn("file watcher unavailable", "dir", d.Files.Dir(), "err", err)
			} else {
				m.watcher = w
			}
		}
	}
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := program.Run()
	return err
}
