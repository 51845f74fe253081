// ABOUTME: Location mapping table loaded from JSON with atomic hot reload
// ABOUTME: Cities, districts, and stations with explicit parent links
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/ecosense/aqroute/internal/models"
)

// tableFile is the on-disk shape of the mapping table
type tableFile struct {
	Cities    []entryFile `json:"cities"`
	Districts []entryFile `json:"districts"`
	Stations  []entryFile `json:"stations"`
}

type entryFile struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	ParentCode string `json:"parent_code,omitempty"`
}

// Table is an immutable snapshot of the location mapping
type Table struct {
	entries []models.GeoEntry
}

// Entries returns all entries. The slice must be treated as read-only.
func (t *Table) Entries() []models.GeoEntry {
	return t.entries
}

// Len returns the number of entries across all levels
func (t *Table) Len() int {
	return len(t.entries)
}

// LoadTable reads a mapping table file
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geo table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable builds a table from raw JSON
func ParseTable(data []byte) (*Table, error) {
	var file tableFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse geo table: %w", err)
	}

	t := &Table{}
	add := func(list []entryFile, level models.GeoLevel) error {
		for _, e := range list {
			if e.Name == "" || e.Code == "" {
				return fmt.Errorf("geo table: %s entry missing name or code", level)
			}
			t.entries = append(t.entries, models.GeoEntry{
				Name:       e.Name,
				Code:       e.Code,
				Level:      level,
				ParentCode: e.ParentCode,
			})
		}
		return nil
	}
	if err := add(file.Cities, models.LevelCity); err != nil {
		return nil, err
	}
	if err := add(file.Districts, models.LevelDistrict); err != nil {
		return nil, err
	}
	if err := add(file.Stations, models.LevelStation); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, fmt.Errorf("geo table is empty")
	}
	return t, nil
}

// Store hands out immutable table snapshots and reloads them on demand
type Store struct {
	path    string
	current atomic.Pointer[Table]
	version atomic.Int64
}

// NewStore loads the table at path and returns a store over it
func NewStore(path string) (*Store, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path}
	s.current.Store(t)
	s.version.Store(1)
	return s, nil
}

// Get returns the current snapshot
func (s *Store) Get() *Table {
	return s.current.Load()
}

// Version returns a counter that increments on every successful reload
func (s *Store) Version() int64 {
	return s.version.Load()
}

// Reload re-reads the file. A bad file keeps the previous snapshot.
func (s *Store) Reload() error {
	t, err := LoadTable(s.path)
	if err != nil {
		return err
	}
	s.current.Store(t)
	s.version.Add(1)
	return nil
}

// Watch reloads the table whenever the backing file is written. Runs
// until ctx is cancelled.
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
					log.Printf("[geo] reload failed, keeping previous table: %v", err)
					continue
				}
				log.Printf("[geo] table reloaded (version %d, %d entries)", s.Version(), s.Get().Len())
			case err := <-watcher.Errors:
				log.Printf("[geo] watcher error: %v", err)
			}
		}
	}()
	// Watch the directory so editor rename-and-replace saves are seen.
	return watcher.Add(filepath.Dir(s.path))
}
