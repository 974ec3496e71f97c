package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL prefix under which the upload directory is served
const PublicPrefix = "/static"

// LocalStorage writes uploads into a directory on disk
type LocalStorage struct {
	dir    string
	prefix string
}

// NewLocalStorage creates dir if needed
func NewLocalStorage(dir, publicPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, prefix: strings.TrimRight(publicPrefix, "/")}, nil
}

// Store copies r to dir/key, creating parent directories for nested keys,
// and returns prefix/key.
func (s *LocalStorage) Store(ctx context.Context, r io.Reader, key string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(key))[1:]
	if clean == "" || clean == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	if clean != filepath.ToSlash(key) {
		return "", fmt.Errorf("storage key %q escapes the upload directory", key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return s.prefix + "/" + clean, nil
}
