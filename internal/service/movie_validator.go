package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dom/movie-wallet/internal/domain"
)

const (
	MinPublishYear = 1888
	minTitleLength = 2
)

const (
	msgTitleTooShort  = "Title must be at least 2 characters long."
	msgFieldRequired  = "At least one field is required."
	msgPublishYearFmt = "Publish year must be between %d and %d."
)

const (
	fieldTitle       = "title"
	fieldPublishYear = "publishYear"
)

// ValidationError carries the single message shown to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MoviePayload is a decoded request body. Key presence is significant:
// an explicit null is validated, an absent key is skipped.
type MoviePayload map[string]any

type CreateMovieInput struct {
	Title       string
	PublishYear int
	Image       *domain.ImageFile
}

// UpdateMovieInput holds only the fields the client supplied.
type UpdateMovieInput struct {
	Title       *string
	PublishYear *int
	Image       *domain.ImageFile
}

// MovieValidator checks movie payloads. It has no side effects; the year
// window is computed from the clock on every call.
type MovieValidator struct {
	now func() time.Time
}

func NewMovieValidator() *MovieValidator {
	return &MovieValidator{now: time.Now}
}

func (v *MovieValidator) MaxPublishYear() int {
	return v.now().Year() + 1
}

func (v *MovieValidator) ValidateCreate(payload MoviePayload) (CreateMovieInput, error) {
	title, err := validateTitle(payload[fieldTitle])
	if err != nil {
		return CreateMovieInput{}, err
	}

	year, err := v.validateYear(payload[fieldPublishYear])
	if err != nil {
		return CreateMovieInput{}, err
	}

	return CreateMovieInput{Title: title, PublishYear: year}, nil
}

func (v *MovieValidator) ValidateUpdate(payload MoviePayload, hasImageFile bool) (UpdateMovieInput, error) {
	rawTitle, hasTitle := payload[fieldTitle]
	rawYear, hasYear := payload[fieldPublishYear]
	if !hasTitle && !hasYear && !hasImageFile {
		return UpdateMovieInput{}, &ValidationError{Message: msgFieldRequired}
	}

	var input UpdateMovieInput

	if hasTitle {
		title, err := validateTitle(rawTitle)
		if err != nil {
			return UpdateMovieInput{}, err
		}
		input.Title = &title
	}

	if hasYear {
		year, err := v.validateYear(rawYear)
		if err != nil {
			return UpdateMovieInput{}, err
		}
		input.PublishYear = &year
	}

	return input, nil
}

func validateTitle(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", &ValidationError{Message: msgTitleTooShort}
	}
	title := strings.TrimSpace(s)
	if utf8.RuneCountInString(title) < minTitleLength {
		return "", &ValidationError{Message: msgTitleTooShort}
	}
	return title, nil
}

func (v *MovieValidator) validateYear(value any) (int, error) {
	maxYear := v.MaxPublishYear()
	year, ok := parseYear(value)
	if !ok || year < MinPublishYear || year > maxYear {
		return 0, &ValidationError{Message: fmt.Sprintf(msgPublishYearFmt, MinPublishYear, maxYear)}
	}
	return year, nil
}

// parseYear accepts integral numbers and non-blank numeric strings.
func parseYear(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return integral(float64(v))
	case float64:
		return integral(v)
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, false
		}
		return integral(f)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return integral(f)
	}
	return 0, false
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
