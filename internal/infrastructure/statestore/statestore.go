package statestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxHistoryEntries = 50

// HistoryEntry records one print the relay performed, newest last.
type HistoryEntry struct {
	OrderName  string    `json:"order_name"`
	DeviceName string    `json:"device_name"`
	PrintedAt  time.Time `json:"printed_at"`
	Reprint    bool      `json:"reprint"`
}

// State is the small local record used to prefill client-side configuration.
// It is never read by the rendering pipeline.
type State struct {
	LastEndpoint   string         `json:"last_endpoint"`
	LastDeviceName string         `json:"last_device_name"`
	History        []HistoryEntry `json:"history"`
}

// Store persists State to a single JSON file. Single-writer by design: the
// relay is the only process expected to write it.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted state. A missing file yields an empty state.
func (s *Store) Load() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("statestore: read %s: %w", s.path, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("statestore: parse %s: %w", s.path, err)
	}
	return &st, nil
}

// Save writes the state atomically (temp file + rename).
func (s *Store) Save(st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(st)
}

func (s *Store) save(st *State) error {
	if len(st.History) > maxHistoryEntries {
		st.History = st.History[len(st.History)-maxHistoryEntries:]
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("statestore: encode: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("statestore: create %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("statestore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("statestore: rename %s: %w", tmp, err)
	}
	return nil
}

// RecordPrint appends a history entry and updates the last-used fields.
func (s *Store) RecordPrint(endpoint, deviceName string, entry HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	if endpoint != "" {
		st.LastEndpoint = endpoint
	}
	if deviceName != "" {
		st.LastDeviceName = deviceName
	}
	st.History = append(st.History, entry)
	return s.save(st)
}
