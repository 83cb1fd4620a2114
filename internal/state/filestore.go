package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/creatorhub/ticket-bot/internal/domain"
)

// FileStore keeps state in a single human-inspectable JSON document.
// Writes go through a temp file plus rename so concurrent readers never
// observe a partial document.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore builds a store writing to the given path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the state file, returning the empty state when the file is
// missing or unreadable.
func (fs *FileStore) Load(ctx context.Context) domain.PersistedState {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.logger.Warn("state file unreadable, starting empty",
				zap.String("path", fs.path), zap.Error(err))
		}
		return domain.EmptyState()
	}

	var s domain.PersistedState
	if err := json.Unmarshal(data, &s); err != nil {
		fs.logger.Warn("state file corrupt, starting empty",
			zap.String("path", fs.path), zap.Error(err))
		return domain.EmptyState()
	}
	s.Normalize()
	return s
}

// Save serializes and atomically replaces the state file.
func (fs *FileStore) Save(ctx context.Context, s domain.PersistedState) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(fs.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path)
}
