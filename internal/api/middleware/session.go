package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/service"
)

const (
	SessionCookieName = "movie_wallet_auth"
	sessionMaxAge     = 7 * 24 * time.Hour
)

type contextKey string

const (
	ClaimKey contextKey = "claim"
)

// TokenVerifier is satisfied by *service.TokenService.
type TokenVerifier interface {
	Verify(token string) service.Verification
}

// TokenExtractor pulls a raw token out of a request.
type TokenExtractor func(r *http.Request) (string, bool)

// BearerToken reads "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// CookieToken reads the named cookie.
func CookieToken(name string) TokenExtractor {
	return func(r *http.Request) (string, bool) {
		cookie, err := r.Cookie(name)
		if err != nil || cookie.Value == "" {
			return "", false
		}
		return cookie.Value, true
	}
}

// SessionResolver maps requests to claims and owns the session cookie.
// Extractors run in order and the first match wins: bearer tokens for API
// callers come before the browser cookie.
type SessionResolver struct {
	tokens       TokenVerifier
	extractors   []TokenExtractor
	secureCookie bool
}

func NewSessionResolver(tokens TokenVerifier, secureCookie bool) *SessionResolver {
	return &SessionResolver{
		tokens:       tokens,
		extractors:   []TokenExtractor{BearerToken, CookieToken(SessionCookieName)},
		secureCookie: secureCookie,
	}
}

func (s *SessionResolver) ExtractToken(r *http.Request) (string, bool) {
	for _, extract := range s.extractors {
		if token, ok := extract(r); ok {
			return token, true
		}
	}
	return "", false
}

// ResolveUser verifies the request's token. Every failure looks the same to
// the caller; the reason is only logged.
func (s *SessionResolver) ResolveUser(r *http.Request) (domain.Claim, bool) {
	token, ok := s.ExtractToken(r)
	if !ok {
		return domain.Claim{}, false
	}

	v := s.tokens.Verify(token)
	if !v.Valid() {
		slog.DebugContext(r.Context(), "session rejected", "reason", v.Failure.String())
		return domain.Claim{}, false
	}
	return v.Claim, true
}

func (s *SessionResolver) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.cookie(token, int(sessionMaxAge.Seconds())))
}

// ClearCookie overwrites the session cookie with an empty, already expired one.
func (s *SessionResolver) ClearCookie(w http.ResponseWriter) {
	// net/http writes a negative MaxAge as "Max-Age=0".
	http.SetCookie(w, s.cookie("", -1))
}

func (s *SessionResolver) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// RequireSession rejects requests without a valid session with a uniform 401.
func RequireSession(sessions *SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claim, ok := sessions.ResolveUser(r)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"Unauthorized. Sign in is required."}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), ClaimKey, claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaim(ctx context.Context) (domain.Claim, bool) {
	claim, ok := ctx.Value(ClaimKey).(domain.Claim)
	return claim, ok
}
