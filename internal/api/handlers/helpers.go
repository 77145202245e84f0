package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dom/movie-wallet/internal/domain"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	msgInvalidJSON    = "Invalid JSON body."
	msgInvalidPayload = "Invalid payload."
	msgInternal       = "Internal server error."
)

// timestampLayout renders UTC timestamps with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

type errorResponse struct {
	Message string `json:"message"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeInternalError logs err against the request and hides it from the client.
func writeInternalError(w http.ResponseWriter, r *http.Request, component string, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"component", component,
		"request_id", chiMiddleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// decodeObject reads a JSON object body. Numbers are kept as json.Number so
// validators can tell them apart from strings.
func decodeObject(r *http.Request) (map[string]any, bool, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, false, err
	}
	obj, ok := body.(map[string]any)
	return obj, ok, nil
}

// stringField returns value[key] when it is a string, otherwise "".
func stringField(value map[string]any, key string) string {
	s, _ := value[key].(string)
	return s
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type userEnvelope struct {
	User *UserResponse `json:"user"`
}

func newUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{ID: user.ID.String(), Email: user.Email}
}

type MovieResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	PublishYear int    `json:"publishYear"`
	Image       string `json:"image"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type MovieListResponse struct {
	Data []MovieResponse `json:"data"`
	Meta domain.PageMeta `json:"meta"`
}

func newMovieResponse(movie *domain.Movie) MovieResponse {
	return MovieResponse{
		ID:          movie.ID.String(),
		Title:       movie.Title,
		PublishYear: movie.PublishYear,
		Image:       movie.Image,
		CreatedAt:   formatTimestamp(movie.CreatedAt),
		UpdatedAt:   formatTimestamp(movie.UpdatedAt),
	}
}

func newMovieListResponse(page *domain.MoviePage) MovieListResponse {
	data := make([]MovieResponse, 0, len(page.Movies))
	for _, movie := range page.Movies {
		data = append(data, newMovieResponse(movie))
	}
	return MovieListResponse{Data: data, Meta: page.Meta}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
