package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/dom/movie-wallet/internal/api/middleware"
	"github.com/dom/movie-wallet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_SignUp(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		body           string
		setup          func()
		expectedStatus int
		expectedMsg    string
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:           "successful signup",
			body:           `{"email":"  New@Example.com ","password":"secret1"}`,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.UserEnvelope
				testutil.AssertJSONResponse(t, resp, &result)
				require.NotNil(t, result.User)
				assert.Equal(t, "new@example.com", result.User.Email)
				assert.NotEmpty(t, result.User.ID)

				cookie := testutil.SessionCookie(resp)
				require.NotNil(t, cookie)
				assert.NotEmpty(t, cookie.Value)
				assert.True(t, cookie.HttpOnly)
				assert.False(t, cookie.Secure)
				assert.Equal(t, 7*24*60*60, cookie.MaxAge)
			},
		},
		{
			name:           "invalid json",
			body:           `{"email":`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid JSON body.",
		},
		{
			name:           "not an object",
			body:           `"hello"`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid payload.",
		},
		{
			name:           "null body",
			body:           `null`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid payload.",
		},
		{
			name:           "email not a string",
			body:           `{"email":42,"password":"secret1"}`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Valid email is required.",
		},
		{
			name:           "short password",
			body:           `{"email":"short@example.com","password":"12345"}`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Password must be at least 6 characters.",
		},
		{
			name: "duplicate email",
			body: `{"email":"taken@example.com","password":"secret1"}`,
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "Email is already in use.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := postJSON(t, ts.APIURL("/auth/signup"), tt.body)
			defer resp.Body.Close()

			if tt.expectedMsg != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMsg)
				return
			}
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	ts := testutil.NewTestServer(t)

	// Create a user for signin tests
	user, rawPassword := testutil.NewUserBuilder().
		WithEmail("signin@example.com").
		WithPassword("correctpassword").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]any
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "successful signin",
			request:        map[string]any{"email": user.Email, "password": rawPassword},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "email is case-insensitive",
			request:        map[string]any{"email": "SIGNIN@example.com", "password": rawPassword},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid password",
			request:        map[string]any{"email": user.Email, "password": "wrongpassword"},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid email or password.",
		},
		{
			name:           "non-existent user",
			request:        map[string]any{"email": "nobody@example.com", "password": "anypassword"},
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "Invalid email or password.",
		},
		{
			name:           "missing password",
			request:        map[string]any{"email": user.Email},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Email and password are required.",
		},
		{
			name:           "password not a string",
			request:        map[string]any{"email": user.Email, "password": 123456},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Email and password are required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/auth/signin"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			if tt.expectedMsg != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMsg)
				assert.Nil(t, testutil.SessionCookie(resp))
				return
			}

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			var result testutil.UserEnvelope
			testutil.AssertJSONResponse(t, resp, &result)
			require.NotNil(t, result.User)
			assert.Equal(t, user.ID.String(), result.User.ID)
			assert.NotNil(t, testutil.SessionCookie(resp))
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	ts := testutil.NewTestServer(t)

	// Create and authenticate a user
	user, token := testutil.NewUserBuilder().
		WithEmail("me@example.com").
		BuildAndAuthenticate(t, ts)

	tests := []struct {
		name           string
		prepare        func(req *http.Request)
		expectedStatus int
		expectUser     bool
	}{
		{
			name: "bearer token",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+token)
			},
			expectedStatus: http.StatusOK,
			expectUser:     true,
		},
		{
			name: "session cookie",
			prepare: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
			},
			expectedStatus: http.StatusOK,
			expectUser:     true,
		},
		{
			name:           "no credentials",
			prepare:        func(req *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid token",
			prepare: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer invalid.token.here")
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.APIURL("/auth/me"), nil)
			require.NoError(t, err)
			tt.prepare(req)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var result testutil.UserEnvelope
			testutil.AssertJSONResponse(t, resp, &result)
			if !tt.expectUser {
				assert.Nil(t, result.User)
				return
			}
			require.NotNil(t, result.User)
			assert.Equal(t, user.ID.String(), result.User.ID)
			assert.Equal(t, "me@example.com", result.User.Email)
		})
	}

	t.Run("deleted user", func(t *testing.T) {
		ts.DB.Truncate(t)

		req := testutil.CreateAuthenticatedRequest(t, http.MethodGet, ts.APIURL("/auth/me"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var result testutil.UserEnvelope
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Nil(t, result.User)
	})
}

func TestAuthHandler_SignOut(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	tests := []struct {
		name  string
		token string
	}{
		{name: "signed in", token: token},
		{name: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, ts.APIURL("/auth/signout"), nil)
			require.NoError(t, err)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: tt.token})
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			setCookie := resp.Header.Get("Set-Cookie")
			assert.Contains(t, setCookie, middleware.SessionCookieName+"=;")
			assert.Contains(t, setCookie, "Max-Age=0")

			var result struct {
				Success bool `json:"success"`
			}
			testutil.AssertJSONResponse(t, resp, &result)
			assert.True(t, result.Success)
		})
	}
}
