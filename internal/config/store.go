// ABOUTME: Atomic snapshot store for the routing config with file watching
// ABOUTME: Readers always see a complete table; reload swaps the pointer whole
package config

import (
	"context"
	"log"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Store hands out immutable routing config snapshots and reloads them
// when the backing file changes.
type Store struct {
	path    string
	current atomic.Pointer[RoutingConfig]
	version atomic.Int64
}

// NewStore loads the routing config at path and returns a store over it
func NewStore(path string) (*Store, error) {
	cfg, err := LoadRouting(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path}
	s.current.Store(cfg)
	s.version.Store(1)
	return s, nil
}

// NewStaticStore wraps an in-memory config that never reloads.
// Watch and Reload are meaningless on it; intended for tests and tools
// that already hold a parsed config.
func NewStaticStore(cfg *RoutingConfig) *Store {
	s := &Store{}
	s.current.Store(cfg)
	s.version.Store(1)
	return s
}

// Get returns the current snapshot. The snapshot must be treated as read-only.
func (s *Store) Get() *RoutingConfig {
	return s.current.Load()
}

// Version returns a counter that increments on every successful reload
func (s *Store) Version() int64 {
	return s.version.Load()
}

// Reload re-reads the file and swaps the snapshot. A parse failure keeps
// the previous snapshot in place.
func (s *Store) Reload() error {
	cfg, err := LoadRouting(s.path)
	if err != nil {
		return err
	}
	s.current.Store(cfg)
	s.version.Add(1)
	return nil
}

// Watch reloads the snapshot whenever the backing file is written.
// Runs until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if filepath.Base(evt.Name) != filepath.Base(s.path) {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Printf("[config] reload failed, keeping previous snapshot: %v", err)
					continue
				}
				log.Printf("[config] routing config reloaded (version %d)", s.Version())
			case err := <-watcher.Errors:
				log.Printf("[config] watcher error: %v", err)
			}
		}
	}()
	// Watch the directory so editor rename-and-replace saves are seen.
	return watcher.Add(filepath.Dir(s.path))
}
