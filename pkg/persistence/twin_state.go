package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// TwinState is the persisted twin state of the agent.
type TwinState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// TelemetryFrequency is the last accepted telemetry interval.
	TelemetryFrequency time.Duration `json:"telemetry_frequency"`

	// DesiredVersion is the $version of the document that set it.
	DesiredVersion int32 `json:"desired_version"`
}

// TwinStateStore persists TwinState to a JSON file.
type TwinStateStore struct {
	mu   sync.Mutex
	path string
}

// NewTwinStateStore returns a store writing to path.
func NewTwinStateStore(path string) *TwinStateStore {
	return &TwinStateStore{path: path}
}

// Path returns the state file path.
func (s *TwinStateStore) Path() string {
	return s.path
}

// Save writes state atomically, replacing any previous file.
func (s *TwinStateStore) Save(state *TwinState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads the state. It returns nil, nil when no state was saved yet.
func (s *TwinStateStore) Load() (*TwinState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &TwinState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("persistence: state file version %d is newer than %d", state.Version, StateVersion)
	}
	return state, nil
}

// Clear removes the state file.
func (s *TwinStateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
