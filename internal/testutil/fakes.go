package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/repository"
	"github.com/google/uuid"
)

// CallLog records calls across fakes so tests can assert their order.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) record(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the recorded calls.
func (l *CallLog) Calls() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// FakeMovieRepository is an in-memory MovieRepository. A non-nil *Func field
// replaces the default behavior of that method.
type FakeMovieRepository struct {
	Log *CallLog

	CreateFunc func(ctx context.Context, movie *domain.Movie) error
	UpdateFunc func(ctx context.Context, movie *domain.Movie) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error

	mu     sync.Mutex
	movies map[uuid.UUID]domain.Movie
}

var _ repository.MovieRepository = (*FakeMovieRepository)(nil)

func NewFakeMovieRepository(log *CallLog) *FakeMovieRepository {
	return &FakeMovieRepository{Log: log, movies: make(map[uuid.UUID]domain.Movie)}
}

// Seed stores movie without recording a call.
func (r *FakeMovieRepository) Seed(movie *domain.Movie) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movies[movie.ID] = *movie
}

// Stored returns the persisted copy of a movie.
func (r *FakeMovieRepository) Stored(id uuid.UUID) (*domain.Movie, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	return &m, ok
}

func (r *FakeMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	r.Log.record("movie.create")
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, movie)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movies[movie.ID] = *movie
	return nil
}

func (r *FakeMovieRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	r.Log.record("movie.get")
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *FakeMovieRepository) List(ctx context.Context, limit, offset int) ([]*domain.Movie, error) {
	r.Log.record("movie.list %d %d", limit, offset)
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*domain.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		all = append(all, &m)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*domain.Movie{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *FakeMovieRepository) Count(ctx context.Context) (int64, error) {
	r.Log.record("movie.count")
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.movies)), nil
}

func (r *FakeMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	r.Log.record("movie.update")
	if r.UpdateFunc != nil {
		return r.UpdateFunc(ctx, movie)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[movie.ID]; !ok {
		return repository.ErrNotFound
	}
	r.movies[movie.ID] = *movie
	return nil
}

func (r *FakeMovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.Log.record("movie.delete")
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.movies, id)
	return nil
}

// FakeImageStore hands out sequential storage ids ("img-1", "img-2", ...).
type FakeImageStore struct {
	Log *CallLog

	UploadFunc func(ctx context.Context, file *domain.ImageFile) (*domain.StoredImage, error)
	DeleteFunc func(ctx context.Context, storageID string) error

	mu      sync.Mutex
	next    int
	deleted []string
}

var _ repository.ImageStore = (*FakeImageStore)(nil)

func NewFakeImageStore(log *CallLog) *FakeImageStore {
	return &FakeImageStore{Log: log}
}

func (s *FakeImageStore) Upload(ctx context.Context, file *domain.ImageFile) (*domain.StoredImage, error) {
	if s.UploadFunc != nil {
		s.Log.record("image.upload")
		return s.UploadFunc(ctx, file)
	}
	s.mu.Lock()
	s.next++
	id := fmt.Sprintf("img-%d", s.next)
	s.mu.Unlock()

	s.Log.record("image.upload %s", id)
	return &domain.StoredImage{URL: "https://images.test/" + id, StorageID: id}, nil
}

func (s *FakeImageStore) Delete(ctx context.Context, storageID string) error {
	s.Log.record("image.delete %s", storageID)
	s.mu.Lock()
	s.deleted = append(s.deleted, storageID)
	s.mu.Unlock()
	if s.DeleteFunc != nil {
		return s.DeleteFunc(ctx, storageID)
	}
	return nil
}

// Deleted returns every storage id Delete was called with.
func (s *FakeImageStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// FakeUserRepository is an in-memory UserRepository keyed by id and email.
type FakeUserRepository struct {
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)

	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

var _ repository.UserRepository = (*FakeUserRepository)(nil)

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: make(map[uuid.UUID]domain.User)}
}

func (r *FakeUserRepository) Create(ctx context.Context, user *domain.User) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, user)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *FakeUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *FakeUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.GetByEmailFunc != nil {
		return r.GetByEmailFunc(ctx, email)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}
