package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads configuration when one of the watched files changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	load     func() (*Config, error)
	onChange func(*Config, error)

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Watch watches the user and project config files and calls onChange with
// the reloaded configuration after each change.
func Watch(onChange func(*Config, error)) (*Watcher, error) {
	paths := []string{GetUserConfigPath()}
	if project := GetProjectConfigPath(); project != "" {
		paths = append(paths, project)
	}
	return NewWatcher(paths, Load, onChange)
}

// NewWatcher watches paths and reloads with load on change. The parent
// directories are watched so files replaced by editors are still seen.
// Directories that do not exist are skipped.
func NewWatcher(paths []string, load func() (*Config, error), onChange func(*Config, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool, len(paths)),
		load:     load,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		// Missing directories are fine; the user may never create one.
		_ = fw.Add(dir)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			cfg, err := w.load()
			if err == nil {
				err = cfg.Validate()
			}
			w.onChange(cfg, err)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
