// Package localfs keeps movie posters on the local disk. It is meant for
// development; the API serves the root directory under /media/.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/repository"
	"github.com/dom/movie-wallet/internal/storage"
)

var ErrInvalidKey = errors.New("storage key escapes the storage root")

type Store struct {
	rootPath  string
	publicURL string
}

var _ repository.ImageStore = (*Store)(nil)

func New(rootPath, publicURL string) (*Store, error) {
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(filepath.Join(p, storage.Namespace), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", p, err)
	}

	return &Store{rootPath: p, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *Store) Root() string {
	return s.rootPath
}

func (s *Store) Upload(ctx context.Context, file *domain.ImageFile) (*domain.StoredImage, error) {
	key := storage.NewObjectKey(file.ContentType)

	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(fullPath, file.Data, 0644); err != nil {
		// Don't leave a partial file behind.
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write image: %w", err)
	}

	return &domain.StoredImage{
		URL:       s.publicURL + "/" + key,
		StorageID: key,
	}, nil
}

// Delete ignores files that are already gone.
func (s *Store) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}

	fullPath, err := s.resolve(storageID)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *Store) resolve(key string) (string, error) {
	fullPath := filepath.Join(s.rootPath, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.rootPath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return fullPath, nil
}
