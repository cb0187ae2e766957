package seen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileStore persists the seen-set as a JSON file. Loading tolerates a
// missing or corrupt file by starting from an empty set: losing dedup state
// costs at worst a duplicate notification, while refusing to start costs the
// watch entirely.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a store writing to the given path.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("state file path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Load reads the persisted set, falling back to an empty one on any error.
func (s *FileStore) Load(_ context.Context) (*Set, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No seen-state file; starting fresh", zap.String("path", s.path))
		} else {
			s.logger.Warn("Could not read seen-state file; starting fresh",
				zap.String("path", s.path), zap.Error(err))
		}
		return NewSet(), nil
	}

	set := NewSet()
	if err := json.Unmarshal(data, set); err != nil {
		s.logger.Warn("Seen-state file is malformed; starting fresh",
			zap.String("path", s.path), zap.Error(err))
		return NewSet(), nil
	}

	s.logger.Info("Loaded seen state",
		zap.Int("booked", set.Len(Booked)),
		zap.Int("released", set.Len(Released)))
	return set, nil
}

// Save writes the full set back to disk, creating parent directories as
// needed. The whole document is rewritten each cycle rather than appended.
func (s *FileStore) Save(_ context.Context, set *Set) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write seen state: %w", err)
	}

	s.logger.Info("Saved seen state",
		zap.Int("booked", set.Len(Booked)),
		zap.Int("released", set.Len(Released)))
	return nil
}
