package tui

import (
	"fmt"
	"path/filepath"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// fileChangedMsg reports that a file backing the session was written by
// another program.
type fileChangedMsg struct{ Path string }

// watchErrMsg carries a watcher failure. Watching stops after it.
type watchErrMsg struct{ Err error }

// watcher follows the session files. Parent directories are watched so
// files replaced by rename are still seen.
type watcher struct {
	w     *fsnotify.Watcher
	files []string
}

func newWatcher(paths []string) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &watcher{w: fw}
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		w.files = append(w.files, abs)
		if dir := filepath.Dir(abs); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// next waits for the next write to a watched file.
func (w *watcher) next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.w.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if name, _ := filepath.Abs(event.Name); slices.Contains(w.files, name) {
					return fileChangedMsg{Path: event.Name}
				}
			case err, ok := <-w.w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{Err: err}
			}
		}
	}
}

func (w *watcher) Close() error {
	if w == nil {
		return nil
	}
	return w.w.Close()
}
