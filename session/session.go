// Package session handles saving and restoring viewer state between runs.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// State is the persisted viewer state: the last address path and scroll
// position, plus recent search terms.
type State struct {
	Path          string   `json:"path"`
	Scroll        int      `json:"scroll"`
	SearchHistory []string `json:"searchHistory,omitempty"`
}

// maxSearchHistory bounds the persisted search term list.
const maxSearchHistory = 20

// Path returns the session file path.
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "compendium", "session.json"), nil
}

// Load reads the session from disk.
func Load() (*State, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// Save writes the session to disk.
func Save(s *State) error {
	path, err := Path()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	if len(s.SearchHistory) > maxSearchHistory {
		s.SearchHistory = s.SearchHistory[len(s.SearchHistory)-maxSearchHistory:]
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Clear removes the session file.
func Clear() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return os.Remove(path)
}
