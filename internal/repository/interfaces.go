package repository

import (
	"context"
	"errors"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type MovieRepository interface {
	Create(ctx context.Context, movie *domain.Movie) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error)
	// List returns movies newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.Movie, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, movie *domain.Movie) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageStore holds poster bytes. Every Upload creates a new object.
type ImageStore interface {
	Upload(ctx context.Context, file *domain.ImageFile) (*domain.StoredImage, error)
	// Delete is a no-op for an empty storage id.
	Delete(ctx context.Context, storageID string) error
}

type Repositories struct {
	User  UserRepository
	Movie MovieRepository
}
