package handlers

import (
	"errors"
	"net/http"

	"github.com/dom/movie-wallet/internal/api/middleware"
	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/service"
)

const (
	msgEmailTaken         = "Email is already in use."
	msgInvalidCredentials = "Invalid email or password."

	maxAuthBody = 1 << 20
)

type AuthHandler struct {
	authService *service.AuthService
	sessions    *middleware.SessionResolver
}

func NewAuthHandler(authService *service.AuthService, sessions *middleware.SessionResolver) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// readCredentials decodes {email, password}. Non-string values read as "".
func readCredentials(w http.ResponseWriter, r *http.Request) (email, password string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBody)
	body, isObject, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return "", "", false
	}
	if !isObject {
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return "", "", false
	}
	return stringField(body, "email"), stringField(body, "password"), true
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	email, password, ok := readCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.authService.SignUp(r.Context(), service.SignUpInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, domain.ErrEmailTaken):
			writeError(w, http.StatusConflict, msgEmailTaken)
		default:
			writeInternalError(w, r, "auth_handler", err)
		}
		return
	}

	h.sessions.SetCookie(w, result.Token)
	writeJSON(w, http.StatusOK, userEnvelope{User: newUserResponse(result.User)})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	email, password, ok := readCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.authService.SignIn(r.Context(), service.SignInInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			writeInternalError(w, r, "auth_handler", err)
		}
		return
	}

	h.sessions.SetCookie(w, result.Token)
	writeJSON(w, http.StatusOK, userEnvelope{User: newUserResponse(result.User)})
}

// SignOut always succeeds; it only clears the cookie.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claim, ok := h.sessions.ResolveUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, userEnvelope{})
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), claim)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeJSON(w, http.StatusUnauthorized, userEnvelope{})
			return
		}
		writeInternalError(w, r, "auth_handler", err)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{User: newUserResponse(user)})
}
