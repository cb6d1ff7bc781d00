package ui

import (
	"context"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/DaanHessen/tensioncurve/internal/engine"
	"github.com/DaanHessen/tensioncurve/internal/export"
	"github.com/DaanHessen/tensioncurve/internal/store"
	"github.com/DaanHessen/tensioncurve/internal/text"
)

const (
	statusTimeout  = 4 * time.Second
	watchDebounce  = 100 * time.Millisecond
	selfWriteGrace = 500 * time.Millisecond
)

func renderAdvice(id int, md string, r text.Renderer) tea.Cmd {
	return func() tea.Msg {
		out, err := r.Render(md)
		if err != nil {
			out = md
		}
		return adviceMsg{id: id, rendered: out}
	}
}

// saveCampaign and the other store commands work on a snapshot so Update
// can keep mutating the live campaign.
func saveCampaign(ctx context.Context, kv store.KV, key string, snapshot *engine.Campaign) tea.Cmd {
	return func() tea.Msg {
		if err := store.Save(ctx, kv, key, snapshot); err != nil {
			return errMsg{err}
		}
		return savedMsg{key: key}
	}
}

func loadCampaign(ctx context.Context, kv store.KV, key string) tea.Cmd {
	return func() tea.Msg {
		c, err := store.Load(ctx, kv, key)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{campaign: c}
	}
}

func exportCampaign(ctx context.Context, ex *export.Exporter, snapshot *engine.Campaign, layout export.Layout, title string) tea.Cmd {
	return func() tea.Msg {
		path, err := ex.Export(ctx, snapshot, layout, title)
		if err != nil {
			return errMsg{err}
		}
		return exportedMsg{path: path}
	}
}

func copyText(what, s string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(s); err != nil {
			return errMsg{err}
		}
		return copiedMsg{what: what}
	}
}

func clearStatusAfter(id int) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return statusClearMsg{id: id} })
}

// watchCampaign waits for the next change to path. Bursts are coalesced and
// changes within selfWriteGrace of our own last write are ignored.
func watchCampaign(w *fsnotify.Watcher, path string, lastWrite func() time.Time) tea.Cmd {
	name := filepath.Base(path)
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Base(ev.Name) != name || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
					continue
				}
				time.Sleep(watchDebounce)
			drain:
				for {
					select {
					case _, ok := <-w.Events:
						if !ok {
							break drain
						}
					default:
						break drain
					}
				}
				if lastWrite != nil && time.Since(lastWrite()) < selfWriteGrace {
					continue
				}
				return fileChangedMsg{path: path}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err}
			}
		}
	}
}
