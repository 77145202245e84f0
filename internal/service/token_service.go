package service

import (
	"errors"
	"time"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenIssuer   = "movie-wallet"
	TokenAudience = "movie-wallet-app"
	TokenTTL      = 7 * 24 * time.Hour
)

var ErrMissingSecret = errors.New("token secret is not configured")

// VerifyFailure says why a token was rejected. It is kept for logs only;
// callers must treat every failure the same way.
type VerifyFailure int

const (
	VerifyOK VerifyFailure = iota
	VerifyMalformed
	VerifyBadSignature
	VerifyExpired
	VerifyBadIssuerOrAudience
	VerifyMissingClaims
)

func (f VerifyFailure) String() string {
	switch f {
	case VerifyOK:
		return "ok"
	case VerifyMalformed:
		return "malformed"
	case VerifyBadSignature:
		return "bad signature"
	case VerifyExpired:
		return "expired"
	case VerifyBadIssuerOrAudience:
		return "bad issuer or audience"
	case VerifyMissingClaims:
		return "missing claims"
	}
	return "unknown"
}

// Verification is the outcome of TokenService.Verify.
type Verification struct {
	Claim   domain.Claim
	Failure VerifyFailure
}

func (v Verification) Valid() bool {
	return v.Failure == VerifyOK
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

func (s *TokenService) Issue(claim domain.Claim) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Email: claim.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claim.Subject,
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature, issuer, audience and expiry in one pass. It never
// returns an error; inspect Valid on the result.
func (s *TokenService) Verify(tokenString string) Verification {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Verification{Failure: classify(err)}
	}

	if claims.Subject == "" || claims.Email == "" {
		return Verification{Failure: VerifyMissingClaims}
	}

	return Verification{
		Claim: domain.Claim{Subject: claims.Subject, Email: claims.Email},
	}
}

func classify(err error) VerifyFailure {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return VerifyExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return VerifyBadSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return VerifyBadIssuerOrAudience
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return VerifyMissingClaims
	default:
		return VerifyMalformed
	}
}
