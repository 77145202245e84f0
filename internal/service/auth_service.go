package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidEmail        = "Valid email is required."
	msgPasswordTooShort    = "Password must be at least 6 characters."
	msgPasswordTooLong     = "Password must be at most 72 bytes."
	msgCredentialsRequired = "Email and password are required."
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	validate *validator.Validate
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type SignUpInput struct {
	Email    string
	Password string
}

type SignInInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if err := s.validate.Var(email, "required,contains=@"); err != nil {
		return nil, &ValidationError{Message: msgInvalidEmail}
	}
	if err := s.validate.Var(input.Password, "min=6"); err != nil {
		return nil, &ValidationError{Message: msgPasswordTooShort}
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &ValidationError{Message: msgPasswordTooLong}
		}
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost the race against a concurrent signup with the same email.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, &ValidationError{Message: msgCredentialsRequired}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// CurrentUser loads the user a verified claim refers to.
func (s *AuthService) CurrentUser(ctx context.Context, claim domain.Claim) (*domain.User, error) {
	id, err := uuid.Parse(claim.Subject)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(domain.Claim{Subject: user.ID.String(), Email: user.Email})
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
