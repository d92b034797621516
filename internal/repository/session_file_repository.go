package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bozoruz/internal/domain"
)

type fileSessionRepository struct {
	dir string
}

// NewFileSessionRepository stores each key as a JSON file inside dir
func NewFileSessionRepository(dir string) (SessionRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &fileSessionRepository{dir: dir}, nil
}

func (r *fileSessionRepository) Load(ctx context.Context, key string) (*domain.Session, error) {
	data, err := os.ReadFile(r.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return decodeSession(data)
}

// Save replaces the session file atomically (temp file + rename)
func (r *fileSessionRepository) Save(ctx context.Context, key string, session *domain.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path(key)); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (r *fileSessionRepository) path(key string) string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		}
		return '_'
	}, key)
	return filepath.Join(r.dir, name+".json")
}
