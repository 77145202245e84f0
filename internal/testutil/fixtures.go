package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/dom/movie-wallet/internal/api/middleware"
	"github.com/dom/movie-wallet/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with a unique email
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		email:    fmt.Sprintf("user_%s@example.com", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// UserEnvelope matches the {user} body of the auth endpoints
type UserEnvelope struct {
	User *struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// BuildAndAuthenticate signs the user up via the API and returns the user
// and the session token taken from the response cookie
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    b.email,
		"password": b.password,
	})

	resp, err := http.Post(ts.APIURL("/auth/signup"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to sign up user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var envelope UserEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.User == nil {
		t.Fatalf("signup returned no user")
	}

	cookie := SessionCookie(resp)
	if cookie == nil {
		t.Fatalf("signup did not set the session cookie")
	}

	userID, _ := uuid.Parse(envelope.User.ID)
	user := &domain.User{
		ID:    userID,
		Email: envelope.User.Email,
	}

	return user, cookie.Value
}

// SessionCookie returns the session cookie set by resp, if any
func SessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// MovieBuilder creates test movies with a builder pattern
type MovieBuilder struct {
	title         string
	publishYear   int
	image         string
	imagePublicID *string
	createdAt     time.Time
}

// NewMovieBuilder creates a new MovieBuilder with default values
func NewMovieBuilder() *MovieBuilder {
	return &MovieBuilder{
		title:       fmt.Sprintf("Movie %s", uuid.New().String()[:8]),
		publishYear: 2010,
		createdAt:   time.Now(),
	}
}

// WithTitle sets the title
func (b *MovieBuilder) WithTitle(title string) *MovieBuilder {
	b.title = title
	return b
}

// WithPublishYear sets the publish year
func (b *MovieBuilder) WithPublishYear(year int) *MovieBuilder {
	b.publishYear = year
	return b
}

// WithStoredImage sets the image URL and the storage id behind it
func (b *MovieBuilder) WithStoredImage(url, storageID string) *MovieBuilder {
	b.image = url
	b.imagePublicID = &storageID
	return b
}

// WithCreatedAt sets the creation time, which drives list ordering
func (b *MovieBuilder) WithCreatedAt(at time.Time) *MovieBuilder {
	b.createdAt = at
	return b
}

// Movie returns the record without persisting it
func (b *MovieBuilder) Movie() *domain.Movie {
	return &domain.Movie{
		ID:            uuid.New(),
		Title:         b.title,
		PublishYear:   b.publishYear,
		Image:         b.image,
		ImagePublicID: b.imagePublicID,
		CreatedAt:     b.createdAt,
		UpdatedAt:     b.createdAt,
	}
}

// Build creates the movie in the database
func (b *MovieBuilder) Build(t *testing.T, db *gorm.DB) *domain.Movie {
	t.Helper()

	movie := b.Movie()
	if err := db.Create(movie).Error; err != nil {
		t.Fatalf("failed to create movie: %v", err)
	}
	return movie
}

// SeedMovies creates count movies, one second apart, oldest first
func SeedMovies(t *testing.T, db *gorm.DB, count int) []*domain.Movie {
	t.Helper()

	base := time.Now().Add(-time.Duration(count) * time.Second)
	movies := make([]*domain.Movie, count)
	for i := 0; i < count; i++ {
		movies[i] = NewMovieBuilder().
			WithTitle(fmt.Sprintf("Seeded Movie %02d", i)).
			WithCreatedAt(base.Add(time.Duration(i) * time.Second)).
			Build(t, db)
	}
	return movies
}

// PNG returns a valid 1x1 PNG image
func PNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// ImageFile returns a PNG ready to hand to the movie service
func ImageFile(t *testing.T) *domain.ImageFile {
	t.Helper()
	return &domain.ImageFile{Data: PNG(t), ContentType: "image/png", Filename: "poster.png"}
}

// FilePart is a file field of a multipart body
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// MultipartBody encodes fields and files. It returns the body and its
// Content-Type header.
func MultipartBody(t *testing.T, fields map[string]string, files ...FilePart) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.Field, f.Filename))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("failed to write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// CreateAuthenticatedRequest creates a JSON request with a bearer token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// CreateMultipartRequest creates a multipart request with a bearer token
func CreateMultipartRequest(t *testing.T, method, url string, fields map[string]string, token string, files ...FilePart) *http.Request {
	t.Helper()

	body, contentType := MultipartBody(t, fields, files...)
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
