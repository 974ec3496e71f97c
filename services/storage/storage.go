// Package storage persists uploaded binaries and returns the path clients use to fetch them.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/teachme/platform-api/config"
)

// Storage persists r under key and returns the retrieval path
type Storage interface {
	Store(ctx context.Context, r io.Reader, key string) (string, error)
}

// New selects the implementation named by cfg.StorageDriver
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "", "local":
		s, err := NewLocalStorage(cfg.UploadDir, PublicPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "spaces":
		s, err := NewSpacesStorage(SpacesConfig{
			AccessKey: cfg.SpacesAccessKey,
			SecretKey: cfg.SpacesSecretKey,
			Bucket:    cfg.SpacesBucket,
			Region:    cfg.SpacesRegion,
			Endpoint:  cfg.SpacesEndpoint,
			CDNURL:    cfg.SpacesCDNURL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// GenerateKey returns a random file name that keeps the lower-cased
// extension of originalName, e.g. "3f0c...e1.mp4".
func GenerateKey(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	return uuid.NewString() + ext
}

// ContentType guesses a MIME type from the key's extension
func ContentType(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
