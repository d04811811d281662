package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStore keeps audio artifacts on the local filesystem. It is the default
// store when no Cloudinary credentials are configured.
type LocalStore struct {
	dir    string
	logger zerolog.Logger
}

// NewLocalStore creates the upload directory if needed and returns the store.
func NewLocalStore(dir string, logger zerolog.Logger) (*LocalStore, error) {
	if dir == "" {
		dir = "uploads"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &LocalStore{
		dir:    dir,
		logger: logger.With().Str("component", "local_store").Logger(),
	}, nil
}

// Save writes the stream to a uniquely named file and returns its path.
func (s *LocalStore) Save(ctx context.Context, name string, audio io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	path := filepath.Join(s.dir, uuid.NewString()+ext)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, audio); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write artifact: %w", err)
	}

	s.logger.Debug().Str("path", path).Msg("audio artifact stored")

	return path, nil
}

// Open streams a previously saved artifact.
func (s *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	file, err := os.Open(ref)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}

	return file, nil
}
