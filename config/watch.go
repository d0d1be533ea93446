package config

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Store holds the live configuration behind an atomic pointer so the engine
// can swap it at tick boundaries without blocking readers (§5, §10.4).
type Store struct {
	current atomic.Pointer[Config]
	path    string
	watcher *fsnotify.Watcher
	log     *logrus.Logger
}

// NewStore wraps an initial config. If path is non-empty, Watch can later be
// called to hot-reload from that file.
func NewStore(initial *Config, path string, log *logrus.Logger) *Store {
	s := &Store{path: path, log: log}
	s.current.Store(initial)
	return s
}

// Get returns the currently active configuration. Safe for concurrent use.
func (s *Store) Get() *Config {
	return s.current.Load()
}

// Watch starts an fsnotify watcher on the store's config file. Reloaded
// configuration only takes effect for subsequent Get() calls — the engine
// reads the store once per tick, at the tick boundary (§5's atomicity
// guarantee), so a reload mid-tick never applies mid-tick.
func (s *Store) Watch() (stop func() error, err error) {
	if s.path == "" {
		return func() error { return nil }, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(s.path); err != nil {
		_ = w.Close()
		return nil, err
	}
	s.watcher = w
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(s.path)
				if err != nil {
					if s.log != nil {
						s.log.WithError(err).Warn("config: reload failed, keeping previous configuration")
					}
					continue
				}
				s.current.Store(cfg)
				if s.log != nil {
					s.log.Info("config: reloaded")
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if s.log != nil {
					s.log.WithError(err).Warn("config: watcher error")
				}
			}
		}
	}()
	return w.Close, nil
}
