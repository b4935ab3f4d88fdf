// Package prefs persists the per-chapter expand/collapse preference.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store holds the expand/collapse preference per chapter filename. It is the
// only state the viewer keeps across sessions.
type Store struct {
	mu      sync.Mutex
	path    string          // empty for an in-memory store
	Entries map[string]bool `json:"expanded"`
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "compendium"), nil
}

// Load reads preferences from disk, starting empty if the file doesn't
// exist yet.
func Load() (*Store, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "prefs.json"))
}

// LoadFrom reads preferences from the given path.
func LoadFrom(path string) (*Store, error) {
	store := &Store{path: path, Entries: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, store); err != nil {
		return nil, err
	}
	if store.Entries == nil {
		store.Entries = make(map[string]bool)
	}
	return store, nil
}

// Memory returns a store that never touches disk.
func Memory() *Store {
	return &Store{Entries: make(map[string]bool)}
}

// Expanded returns the persisted preference for a chapter, and whether one
// exists.
func (s *Store) Expanded(filename string) (expanded, known bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.Entries[filename]
	return v, ok
}

// SetExpanded records the preference and saves best-effort.
func (s *Store) SetExpanded(filename string, expanded bool) {
	s.mu.Lock()
	s.Entries[filename] = expanded
	s.mu.Unlock()
	_ = s.save()
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
