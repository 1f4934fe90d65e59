// Package dismiss persists the set of dismissed anomaly keys. The whole
// set carries one timestamp from its first write and is discarded after
// MaxAge, so old dismissals cannot pin forgotten state forever.
package dismiss

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxAge is how long a dismissal set lives before it is cleared wholesale.
const MaxAge = 30 * 24 * time.Hour

type persisted struct {
	Data      []string  `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a file-backed dismissed-key set, safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	path  string
	keys  map[string]bool
	since time.Time
	now   func() time.Time
}

// Open loads the store from path, creating an empty set when the file is
// missing or expired. A corrupt file is treated as empty rather than
// blocking startup.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		keys: make(map[string]bool),
		now:  time.Now,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dismissal store: %w", err)
	}

	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		return s, nil
	}
	if s.now().Sub(p.Timestamp) > MaxAge {
		return s, nil
	}
	s.since = p.Timestamp
	for _, k := range p.Data {
		s.keys[k] = true
	}
	return s, nil
}

// Add records a dismissal key and persists the set.
func (s *Store) Add(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	if s.since.IsZero() {
		s.since = s.now()
	}
	s.keys[key] = true
	return s.saveLocked()
}

// Keys returns the current dismissal set, expiring it first if stale.
func (s *Store) Keys() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	out := make(map[string]bool, len(s.keys))
	for k := range s.keys {
		out[k] = true
	}
	return out
}

// Contains reports whether a key has been dismissed.
func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	return s.keys[key]
}

func (s *Store) expireLocked() {
	if s.since.IsZero() {
		return
	}
	if s.now().Sub(s.since) > MaxAge {
		s.keys = make(map[string]bool)
		s.since = time.Time{}
	}
}

func (s *Store) saveLocked() error {
	p := persisted{Data: make([]string, 0, len(s.keys)), Timestamp: s.since}
	for k := range s.keys {
		p.Data = append(p.Data, k)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode dismissal store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create dismissal dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write dismissal store: %w", err)
	}
	return nil
}
