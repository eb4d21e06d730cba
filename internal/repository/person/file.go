package personrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/safeguardhq/safeguard/internal/config"
	domain "github.com/safeguardhq/safeguard/internal/domain/person"
	"github.com/safeguardhq/safeguard/internal/logger"
)

// Repository defines persistence operations for the person record set.
//
// Load must tolerate a missing or corrupt backing store by returning an
// empty record set, so a broken store degrades to "no one monitored yet"
// instead of killing the process.
type Repository interface {
	Load(ctx context.Context) (map[string]*domain.Person, error)
	Save(ctx context.Context, records map[string]*domain.Person) error
}

// FileRepository persists the person records to a single JSON file on disk.
// Saves replace the whole document atomically so a crash mid-write never
// leaves a partially written store behind.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the record set from disk.
// A missing or undecodable file yields an empty record set.
func (r *FileRepository) Load(ctx context.Context) (map[string]*domain.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]*domain.Person{}, nil
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	records := map[string]*domain.Person{}
	if err = json.Unmarshal(contents, &records); err != nil {
		logger.WarnKV(ctx, "State file is corrupt, starting with an empty record set",
			"path", r.path, "error", err)

		return map[string]*domain.Person{}, nil
	}

	return records, nil
}

// Save writes the full record set to disk as one JSON document.
// The document is written to a temporary file first and renamed into place.
func (r *FileRepository) Save(_ context.Context, records map[string]*domain.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
