package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	msgMovieNotFound         = "Movie not found."
	msgInvalidRequestPayload = "Invalid request payload."
	msgUnsupportedImageType  = "Unsupported image type."
	msgImageTooLarge         = "Image must be 5MB or smaller."
)

type MovieHandler struct {
	movieService *service.MovieService
	validator    *service.MovieValidator
}

func NewMovieHandler(movieService *service.MovieService, validator *service.MovieValidator) *MovieHandler {
	return &MovieHandler{movieService: movieService, validator: validator}
}

func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseQueryInt(query.Get("page"), service.DefaultPage)
	limit := parseQueryInt(query.Get("limit"), service.DefaultLimit)

	result, err := h.movieService.List(r.Context(), page, limit)
	if err != nil {
		writeInternalError(w, r, "movie_handler", err)
		return
	}

	writeJSON(w, http.StatusOK, newMovieListResponse(result))
}

func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movieService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternalError(w, r, "movie_handler", err)
		return
	}
	if movie == nil {
		writeError(w, http.StatusNotFound, msgMovieNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newMovieResponse(movie))
}

func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, img, ok := h.readMovieRequest(w, r)
	if !ok {
		return
	}

	input, err := h.validator.ValidateCreate(payload)
	if err != nil {
		h.writeMovieError(w, r, err)
		return
	}
	input.Image = img

	movie, err := h.movieService.Create(r.Context(), input)
	if err != nil {
		writeInternalError(w, r, "movie_handler", err)
		return
	}

	writeJSON(w, http.StatusCreated, newMovieResponse(movie))
}

func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, img, ok := h.readMovieRequest(w, r)
	if !ok {
		return
	}

	input, err := h.validator.ValidateUpdate(payload, img != nil)
	if err != nil {
		h.writeMovieError(w, r, err)
		return
	}
	input.Image = img

	movie, err := h.movieService.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeInternalError(w, r, "movie_handler", err)
		return
	}
	if movie == nil {
		writeError(w, http.StatusNotFound, msgMovieNotFound)
		return
	}

	writeJSON(w, http.StatusOK, newMovieResponse(movie))
}

func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.movieService.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeInternalError(w, r, "movie_handler", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, msgMovieNotFound)
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// readMovieRequest accepts either a multipart form or a JSON object and
// writes the 400 response itself when the body is unusable.
func (h *MovieHandler) readMovieRequest(w http.ResponseWriter, r *http.Request) (service.MoviePayload, *domain.ImageFile, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMovieBody)

	if isMultipart(r) {
		payload, img, err := parseMovieForm(r)
		if err != nil {
			h.writeMovieError(w, r, err)
			return nil, nil, false
		}
		return payload, img, true
	}

	body, isObject, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return nil, nil, false
	}
	if !isObject {
		writeError(w, http.StatusBadRequest, msgInvalidRequestPayload)
		return nil, nil, false
	}
	return service.MoviePayload(body), nil, true
}

func (h *MovieHandler) writeMovieError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrUnsupportedImageType):
		writeError(w, http.StatusBadRequest, msgUnsupportedImageType)
	case errors.Is(err, domain.ErrImageTooLarge):
		writeError(w, http.StatusBadRequest, msgImageTooLarge)
	case errors.Is(err, errMalformedForm):
		writeError(w, http.StatusBadRequest, msgInvalidRequestPayload)
	default:
		writeInternalError(w, r, "movie_handler", err)
	}
}

// parseQueryInt reads a positive integer query value. Fractions are floored;
// anything missing, non-numeric or below 1 yields fallback.
func parseQueryInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	f = math.Floor(f)
	if f < 1 {
		return fallback
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
