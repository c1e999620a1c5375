package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kagami-chat/kagami/internal/redact"
)

// FileStore keeps one JSON file per session under a directory. Writes go
// through a temp file and rename so a crashed write never leaves a
// truncated record.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("session dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *FileStore) Load(_ context.Context, id string) (*Session, error) {
	data, err := os.ReadFile(f.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (f *FileStore) Save(_ context.Context, s *Session) error {
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return errors.New("session id is empty")
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmpFile, err := os.CreateTemp(f.dir, s.ID+".json.tmp-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), f.path(s.ID)); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(f.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// LoadAll reads every session file in the directory, skipping records that
// no longer decode instead of failing the whole sweep.
func (f *FileStore) LoadAll(ctx context.Context) ([]*Session, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read session dir: %w", err)
	}
	var out []*Session
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		s, err := f.Load(ctx, id)
		if err != nil {
			redact.Logf("session: skipping unreadable record %s: %v", entry.Name(), err)
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *FileStore) Close() error { return nil }
