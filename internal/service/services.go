package service

import (
	"github.com/dom/movie-wallet/internal/config"
	"github.com/dom/movie-wallet/internal/repository"
)

type Services struct {
	Auth      *AuthService
	Tokens    *TokenService
	Movie     *MovieService
	Validator *MovieValidator
}

func NewServices(repos *repository.Repositories, images repository.ImageStore, cfg *config.Config) (*Services, error) {
	tokens, err := NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth:      NewAuthService(repos.User, tokens),
		Tokens:    tokens,
		Movie:     NewMovieService(repos.Movie, images),
		Validator: NewMovieValidator(),
	}, nil
}
