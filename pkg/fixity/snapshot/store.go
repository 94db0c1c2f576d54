// Package snapshot persists the baseline snapshot as an indented JSON
// document mapping each file path to its recorded digest and timestamps.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jamesainslie/fixity/pkg/fixity/logging"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// indent matches the four-space layout of existing baseline files.
const indent = "    "

var logger = logging.Get("snapshot")

// Store reads and writes a baseline file.
type Store struct {
	path string
}

// New returns a Store for the baseline file at path. The file is not
// touched until Load or Save is called.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("baseline path cannot be empty")
	}
	return &Store{path: path}, nil
}

// Path returns the baseline file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored snapshot. A missing, unreadable, or corrupt
// baseline is logged and treated as an empty snapshot; Load never fails.
func (s *Store) Load() types.Snapshot {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("no baseline file yet", "path", s.path)
		} else {
			logger.Warn("cannot read baseline file", "path", s.path, "error", err)
		}
		return types.Snapshot{}
	}

	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Warn("cannot parse baseline file", "path", s.path, "error", err)
		return types.Snapshot{}
	}
	if snap == nil {
		snap = types.Snapshot{}
	}

	logger.Debug("baseline loaded", "path", s.path, "files", len(snap))
	return snap
}

// Save writes the whole snapshot, replacing any previous baseline. The
// file is written to a temporary sibling and renamed into place so a
// failed write never leaves a truncated baseline behind.
func (s *Store) Save(snap types.Snapshot) error {
	if snap == nil {
		snap = types.Snapshot{}
	}

	data, err := json.MarshalIndent(snap, "", indent)
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create baseline directory: %w", err)
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write baseline: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace baseline: %w", err)
	}

	logger.Debug("baseline saved", "path", s.path, "files", len(snap))
	return nil
}
