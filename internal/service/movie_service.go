package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// MovieService owns the movie record lifecycle and keeps the image store in
// step with it. Read-modify-write in Update and Delete is not locked; two
// writers on the same record can lose an update.
type MovieService struct {
	movieRepo repository.MovieRepository
	images    repository.ImageStore
	now       func() time.Time
}

func NewMovieService(movieRepo repository.MovieRepository, images repository.ImageStore) *MovieService {
	return &MovieService{
		movieRepo: movieRepo,
		images:    images,
		now:       time.Now,
	}
}

// List returns a page of movies, newest first. Non-positive page or limit
// fall back to the defaults.
func (s *MovieService) List(ctx context.Context, page, limit int) (*domain.MoviePage, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	total, err := s.movieRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}

	movies, err := s.movieRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	return &domain.MoviePage{
		Movies: movies,
		Meta:   NewPageMeta(page, limit, int(total)),
	}, nil
}

func NewPageMeta(page, limit, totalItems int) domain.PageMeta {
	totalPages := (totalItems + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return domain.PageMeta{
		Page:            page,
		Limit:           limit,
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// Get returns nil when no movie has the id, including ids that are not UUIDs.
func (s *MovieService) Get(ctx context.Context, id string) (*domain.Movie, error) {
	movieID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	movie, err := s.movieRepo.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) Create(ctx context.Context, input CreateMovieInput) (*domain.Movie, error) {
	now := s.now()
	movie := &domain.Movie{
		ID:          uuid.New(),
		Title:       normalizeTitle(input.Title),
		PublishYear: input.PublishYear,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	cleanup := newBlobCleanup(s.images)
	if input.Image != nil {
		stored, err := s.images.Upload(ctx, input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		cleanup.deleteOnRollback(stored.StorageID)
		setImage(movie, stored)
	}

	if err := s.movieRepo.Create(ctx, movie); err != nil {
		cleanup.rollback(ctx)
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}
	cleanup.commit(ctx)

	return movie, nil
}

// Update applies merge-patch semantics and returns nil when the movie does
// not exist. A replaced image is deleted only after the new one is uploaded
// and the record points at it.
func (s *MovieService) Update(ctx context.Context, id string, input UpdateMovieInput) (*domain.Movie, error) {
	movie, err := s.Get(ctx, id)
	if err != nil || movie == nil {
		return nil, err
	}

	cleanup := newBlobCleanup(s.images)
	if input.Image != nil {
		stored, err := s.images.Upload(ctx, input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		cleanup.deleteOnRollback(stored.StorageID)
		if movie.HasStoredImage() {
			cleanup.deleteOnCommit(*movie.ImagePublicID)
		}
		setImage(movie, stored)
	}

	if input.Title != nil {
		movie.Title = normalizeTitle(*input.Title)
	}
	if input.PublishYear != nil {
		movie.PublishYear = *input.PublishYear
	}
	movie.UpdatedAt = s.now()

	if err := s.movieRepo.Update(ctx, movie); err != nil {
		cleanup.rollback(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	cleanup.commit(ctx)

	return movie, nil
}

// Delete removes the stored image first, then the record. It reports false
// when the movie does not exist.
func (s *MovieService) Delete(ctx context.Context, id string) (bool, error) {
	movie, err := s.Get(ctx, id)
	if err != nil || movie == nil {
		return false, err
	}

	if movie.HasStoredImage() {
		if err := s.images.Delete(ctx, *movie.ImagePublicID); err != nil {
			slog.WarnContext(ctx, "failed to delete movie image",
				"component", "movie_service",
				"movie_id", movie.ID.String(),
				"storage_id", *movie.ImagePublicID,
				"error", err,
			)
		}
	}

	if err := s.movieRepo.Delete(ctx, movie.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete movie: %w", err)
	}

	return true, nil
}

func setImage(movie *domain.Movie, stored *domain.StoredImage) {
	storageID := stored.StorageID
	movie.Image = stored.URL
	movie.ImagePublicID = &storageID
}

func normalizeTitle(title string) string {
	return strings.TrimSpace(title)
}
