// Package posting selects a fact outside the recent window, publishes it
// with retries and records it in the posting state.
package posting

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/runnerr0/factbook/internal/facts"
)

// StateVersion is the schema written by Save.
const StateVersion = 2

// State is the posting log. RecentIDs grows without bound, oldest first;
// only its tail is consulted when selecting.
type State struct {
	Version   int   `json:"version"`
	RecentIDs []int `json:"recent_ids"`
}

// NewState returns an empty current-version state.
func NewState() *State {
	return &State{Version: StateVersion, RecentIDs: []int{}}
}

// stateFile is every shape a state file has had on disk.
type stateFile struct {
	Version   int   `json:"version"`
	RecentIDs []int `json:"recent_ids"`
	// PostedIDs is the unversioned set of every id ever posted.
	PostedIDs []int `json:"posted_ids"`
}

// LoadState reads the state at path. A missing file is an empty state.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return DecodeState(data)
}

// DecodeState parses a state file of any known version and migrates it
// to StateVersion.
func DecodeState(data []byte) (*State, error) {
	var raw stateFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if raw.Version > StateVersion {
		return nil, fmt.Errorf("parse state: version %d is newer than supported %d", raw.Version, StateVersion)
	}
	if raw.Version <= 1 && raw.RecentIDs == nil {
		raw = migrateV1(raw)
	}
	if raw.RecentIDs == nil {
		raw.RecentIDs = []int{}
	}
	return &State{Version: StateVersion, RecentIDs: raw.RecentIDs}, nil
}

// migrateV1 turns the legacy posted set into an ordered log. The set
// carries no posting order, so ids are logged ascending.
func migrateV1(old stateFile) stateFile {
	ids := slices.Clone(old.PostedIDs)
	slices.Sort(ids)
	return stateFile{Version: StateVersion, RecentIDs: slices.Compact(ids)}
}

// Save writes the state atomically as current-version JSON.
func (s *State) Save(path string) error {
	out := State{Version: StateVersion, RecentIDs: s.RecentIDs}
	if out.RecentIDs == nil {
		out.RecentIDs = []int{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := facts.WriteAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Window returns the last w recorded ids, oldest first.
func (s *State) Window(w int) []int {
	if w <= 0 {
		return nil
	}
	if w >= len(s.RecentIDs) {
		return s.RecentIDs
	}
	return s.RecentIDs[len(s.RecentIDs)-w:]
}

// InWindow reports whether id is among the last w recorded ids.
func (s *State) InWindow(id, w int) bool {
	return slices.Contains(s.Window(w), id)
}

// Record appends id to the log.
func (s *State) Record(id int) {
	s.RecentIDs = append(s.RecentIDs, id)
}
