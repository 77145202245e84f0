package api

import (
	"net/http"

	"github.com/dom/movie-wallet/internal/api/handlers"
	"github.com/dom/movie-wallet/internal/api/middleware"
	"github.com/dom/movie-wallet/internal/config"
	"github.com/dom/movie-wallet/internal/metrics"
	"github.com/dom/movie-wallet/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the HTTP surface. mediaRoot is the local image directory
// served under /media/; pass "" when images live elsewhere.
func NewRouter(services *service.Services, cfg *config.Config, mediaRoot string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(metrics.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	if mediaRoot != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaRoot))))
	}

	sessions := middleware.NewSessionResolver(services.Tokens, cfg.IsProduction())
	authHandler := handlers.NewAuthHandler(services.Auth, sessions)
	movieHandler := handlers.NewMovieHandler(services.Movie, services.Validator)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/signout", authHandler.SignOut)
			r.Get("/me", authHandler.Me)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", movieHandler.List)
			r.Get("/{id}", movieHandler.Get)

			// Mutations need a signed-in user
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(sessions))
				r.Post("/", movieHandler.Create)
				r.Patch("/{id}", movieHandler.Update)
				r.Delete("/{id}", movieHandler.Delete)
			})
		})
	})

	return r
}
