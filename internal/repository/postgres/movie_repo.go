package postgres

import (
	"context"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type movieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *movieRepository {
	return &movieRepository{db: db}
}

func (r *movieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	return translate(r.db.WithContext(ctx).Create(movie).Error)
}

func (r *movieRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	var movie domain.Movie
	err := r.db.WithContext(ctx).First(&movie, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &movie, nil
}

func (r *movieRepository) List(ctx context.Context, limit, offset int) ([]*domain.Movie, error) {
	var movies []*domain.Movie
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&movies).Error
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Movie{}).Count(&count).Error
	return count, err
}

// Update writes the mutable columns, zero values included.
func (r *movieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	result := r.db.WithContext(ctx).
		Model(movie).
		Select("title", "publish_year", "image", "image_public_id", "updated_at").
		Updates(movie)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *movieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Movie{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
