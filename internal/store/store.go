package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/teamconnect/go-services/pkg/logger"
)

// Collection names understood by the rest of the system. Each one maps to a
// single JSON document under the data directory.
const (
	Users       = "users"
	Files       = "files"
	Snippets    = "snippets"
	Messages    = "messages"
	ActivityLog = "activity_log"
)

// Store persists named collections as whole JSON documents on disk.
// Every load and save, for every collection, runs under one process-wide
// mutex, so document-level read-modify-write cycles are totally ordered and
// no update within a collection can be lost to interleaving. Throughput is
// traded away for that guarantee.
type Store struct {
	mu  sync.Mutex
	dir string
}

// New creates the data directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the current document for name into out (a pointer to a map or
// slice). A missing, unreadable, or corrupt document leaves out at its empty
// value: availability is preferred over failing hard on bad state.
func (s *Store) Load(name string, out interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(name, out)
}

// Save atomically replaces the persisted document for name.
func (s *Store) Save(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(name, v)
}

// Update runs a read-modify-write cycle under the store lock: the current
// document is loaded into doc, mutate edits it in place, and the result is
// written back. When mutate returns an error nothing is persisted. This is
// the only mutation path collections should use; holding the lock across the
// whole cycle is what linearizes concurrent writers.
func (s *Store) Update(name string, doc interface{}, mutate func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(name, doc)
	if err := mutate(); err != nil {
		return err
	}
	return s.saveLocked(name, doc)
}

func (s *Store) loadLocked(name string, out interface{}) {
	b, err := os.ReadFile(s.path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("store: cannot read collection %q, treating as empty: %v", name, err)
		}
		return
	}
	if len(b) == 0 {
		return
	}
	if err := json.Unmarshal(b, out); err != nil {
		logger.Warnf("store: corrupt collection %q, treating as empty: %v", name, err)
		// Unmarshal may have partially filled out before failing; reset it.
		v := reflect.ValueOf(out).Elem()
		v.Set(reflect.Zero(v.Type()))
	}
}

func (s *Store) saveLocked(name string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection %q: %w", name, err)
	}
	// write-then-rename so a crash mid-save never leaves a torn document
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write collection %q: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("replace collection %q: %w", name, err)
	}
	return nil
}
