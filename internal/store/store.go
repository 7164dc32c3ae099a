// Package store persists the user collection as a JSON array on disk.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/smileynet/agenda/internal/contact"
)

// FileStore reads and writes the whole collection to a single file.
// There is no locking; concurrent writers overwrite each other.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a FileStore backed by path. A nil logger discards.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the persisted collection, or an empty one if the file is
// missing, unreadable or malformed.
func (s *FileStore) Load() []contact.User {
	users, err := s.Read()
	if err != nil {
		s.logger.Debug("treating store as empty", slog.String("path", s.path), slog.Any("error", err))
		return []contact.User{}
	}
	return users
}

// Read is the strict form of Load. A missing file is an empty collection,
// not an error.
func (s *FileStore) Read() ([]contact.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []contact.User{}, nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	var users []contact.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("store: parsing %s: %w", s.path, err)
	}
	if users == nil {
		users = []contact.User{}
	}
	return users, nil
}

// Save overwrites the backing file with the full collection, indented by
// two spaces.
func (s *FileStore) Save(users []contact.User) error {
	if users == nil {
		users = []contact.User{}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("store: creating directory: %w", err)
		}
	}

	data, err := Marshal(users)
	if err != nil {
		return fmt.Errorf("store: marshaling: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	return nil
}

// Marshal encodes users in the file layout: 2-space indent, no HTML
// escaping and no trailing newline.
func Marshal(users []contact.User) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(users); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
