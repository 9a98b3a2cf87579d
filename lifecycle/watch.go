package lifecycle

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/configstore"
	"github.com/abhissng/nhwr-mediator/mediator"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// DefinitionWatch reloads a mediator definition file when it changes and
// publishes its configuration. The parent directory is watched so that
// editors replacing the file are seen too.
type DefinitionWatch struct {
	path    string
	watcher *fsnotify.Watcher
	configs chan configstore.Configuration
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	log     *log.Log
}

// WatchDefinition starts watching path.
func WatchDefinition(path string, logger *log.Log) (*DefinitionWatch, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &DefinitionWatch{
		path:    abs,
		watcher: watcher,
		configs: make(chan configstore.Configuration, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		log:     logger,
	}
	go w.run()
	return w, nil
}

// Configs delivers each successfully reloaded configuration. It is closed
// after Close.
func (w *DefinitionWatch) Configs() <-chan configstore.Configuration {
	return w.configs
}

// Close stops the watch and waits for it to finish. Safe to call twice.
func (w *DefinitionWatch) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		<-w.stopped
	})
	return err
}

func (w *DefinitionWatch) run() {
	defer close(w.stopped)
	defer close(w.configs)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("Mediator definition watch error", log.String("path", w.path), log.Err(err))
		case <-trigger:
			trigger = nil
			w.reload()
		}
	}
}

func (w *DefinitionWatch) reload() {
	def, err := mediator.Load(w.path)
	if err != nil {
		w.log.Warn("Ignoring invalid mediator definition", log.String("path", w.path), log.Err(err))
		return
	}
	cfg := def.StaticConfig()
	select {
	case w.configs <- cfg:
	case <-w.done:
		return
	default:
		// drop the stale pending value in favour of the newest
		select {
		case <-w.configs:
		default:
		}
		select {
		case w.configs <- cfg:
		case <-w.done:
		}
	}
}
