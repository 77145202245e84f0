package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/movie-wallet/internal/api"
	"github.com/dom/movie-wallet/internal/config"
	"github.com/dom/movie-wallet/internal/repository"
	repoPostgres "github.com/dom/movie-wallet/internal/repository/postgres"
	"github.com/dom/movie-wallet/internal/service"
	"github.com/dom/movie-wallet/internal/storage/localfs"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_movie_wallet"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"movies", "users"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		LogLevel:           "error",
		LogFormat:          "text",
		Storage: config.StorageConfig{
			Backend: config.StorageLocal,
		},
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server    *httptest.Server
	DB        *TestDB
	Repos     *repository.Repositories
	Services  *service.Services
	Images    *localfs.Store
	MediaRoot string
	Config    *config.Config
}

// NewTestServer creates a complete test server backed by postgres and a
// temporary image directory
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	mediaRoot := t.TempDir()
	// Relative so image URLs resolve against whatever address the server gets.
	cfg.Storage.Local = config.LocalConfig{Root: mediaRoot, PublicURL: "/media"}

	images, err := localfs.New(cfg.Storage.Local.Root, cfg.Storage.Local.PublicURL)
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}

	repos := repoPostgres.NewRepositories(testDB.DB)
	services, err := service.NewServices(repos, images, cfg)
	if err != nil {
		t.Fatalf("failed to create services: %v", err)
	}
	router := api.NewRouter(services, cfg, images.Root())

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:    server,
		DB:        testDB,
		Repos:     repos,
		Services:  services,
		Images:    images,
		MediaRoot: mediaRoot,
		Config:    cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}
