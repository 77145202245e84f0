package service

import (
	"testing"
	"time"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, secret string) *TokenService {
	t.Helper()
	s, err := NewTokenService(secret)
	require.NoError(t, err)
	return s
}

func TestNewTokenService_MissingSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenService_RoundTrip(t *testing.T) {
	s := newTestTokenService(t, "test-secret")

	claims := []domain.Claim{
		{Subject: "user-1", Email: "a@b.c"},
		{Subject: "0b7c6f0e-4f1f-4c3e-9a43-1c2d7f9c1e11", Email: "someone@example.com"},
		{Subject: "ünïcødé", Email: "x@y"},
	}

	for _, claim := range claims {
		t.Run(claim.Subject, func(t *testing.T) {
			token, err := s.Issue(claim)
			require.NoError(t, err)

			v := s.Verify(token)
			require.True(t, v.Valid(), "failure: %s", v.Failure)
			assert.Equal(t, claim, v.Claim)
		})
	}
}

func TestTokenService_IssueSetsRegisteredClaims(t *testing.T) {
	s := newTestTokenService(t, "test-secret")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	token, err := s.Issue(domain.Claim{Subject: "u1", Email: "u1@example.com"})
	require.NoError(t, err)

	parsed := &sessionClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, parsed)
	require.NoError(t, err)

	assert.Equal(t, TokenIssuer, parsed.Issuer)
	assert.Equal(t, jwt.ClaimStrings{TokenAudience}, parsed.Audience)
	assert.Equal(t, now.Add(7*24*time.Hour).Unix(), parsed.ExpiresAt.Unix())
}

func TestTokenService_VerifyRejects(t *testing.T) {
	s := newTestTokenService(t, "test-secret")
	now := time.Now()

	sign := func(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	valid := func() sessionClaims {
		return sessionClaims{
			Email: "a@b.c",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				Issuer:    TokenIssuer,
				Audience:  jwt.ClaimStrings{TokenAudience},
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	other := newTestTokenService(t, "another-secret")
	otherToken, err := other.Issue(domain.Claim{Subject: "u1", Email: "a@b.c"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  VerifyFailure
	}{
		{
			name:  "garbage",
			token: func(t *testing.T) string { return "garbage" },
			want:  VerifyMalformed,
		},
		{
			name:  "empty",
			token: func(t *testing.T) string { return "" },
			want:  VerifyMalformed,
		},
		{
			name:  "different secret",
			token: func(t *testing.T) string { return otherToken },
			want:  VerifyBadSignature,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				c := valid()
				c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
				return sign(t, c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			want: VerifyExpired,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				c := valid()
				c.Issuer = "someone-else"
				return sign(t, c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			want: VerifyBadIssuerOrAudience,
		},
		{
			name: "wrong audience",
			token: func(t *testing.T) string {
				c := valid()
				c.Audience = jwt.ClaimStrings{"other-app"}
				return sign(t, c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			want: VerifyBadIssuerOrAudience,
		},
		{
			name: "missing email",
			token: func(t *testing.T) string {
				c := valid()
				c.Email = ""
				return sign(t, c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			want: VerifyMissingClaims,
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				c := valid()
				c.Subject = ""
				return sign(t, c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			want: VerifyMissingClaims,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				c := valid()
				c.ExpiresAt = nil
				return sign(t, c, jwt.SigningMethodHS256, []byte("test-secret"))
			},
			want: VerifyMissingClaims,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return sign(t, valid(), jwt.SigningMethodHS512, []byte("test-secret"))
			},
			want: VerifyBadSignature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := s.Verify(tt.token(t))
			assert.False(t, v.Valid())
			assert.Equal(t, tt.want, v.Failure)
			assert.Equal(t, domain.Claim{}, v.Claim)
		})
	}
}
