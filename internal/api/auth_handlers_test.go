package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        "owner@example.com",
		"password":     testPassword,
		"display_name": "Owner",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[AuthResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.V)
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.NotEmpty(t, env.Data.RefreshToken)
	assert.Equal(t, "Bearer", env.Data.TokenType)
	assert.Positive(t, env.Data.ExpiresIn)
	assert.Equal(t, "admin", env.Data.User.Role)
	assert.Equal(t, "Owner", env.Data.User.DisplayName)

	resp = ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "reader@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "customer", decode[AuthResponse](t, resp.Body.Bytes()).Data.User.Role)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "dup@example.com")

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "DUP@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing email", map[string]any{"password": testPassword}},
		{"bad email", map[string]any{"email": "not-an-email", "password": testPassword}},
		{"short password", map[string]any{"email": "a@example.com", "password": "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/register", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

			env := decode[any](t, resp.Body.Bytes())
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION", env.Error.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "login@example.com")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.NotEmpty(t, decode[AuthResponse](t, resp.Body.Bytes()).Data.AccessToken)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "login@example.com",
		"password": "wrong-password-entirely",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    "refresh@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	first := decode[AuthResponse](t, resp.Body.Bytes()).Data

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	second := decode[AuthResponse](t, resp.Body.Bytes()).Data
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-out token is no longer accepted.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{"refresh_token": second.RefreshToken})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/logout", map[string]any{"refresh_token": second.RefreshToken})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{"refresh_token": second.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestMe(t *testing.T) {
	ts := setupTestServer(t)
	token, userID := ts.register(t, "me@example.com")

	resp := ts.api.Get("/api/v1/auth/me", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, userID, decode[UserResponse](t, resp.Body.Bytes()).Data.ID)

	resp = ts.api.Get("/api/v1/auth/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/auth/me", bearer("v4.local.garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, withAuthLimit(0.001, 2))

	body := map[string]any{"email": "nobody@example.com", "password": testPassword}
	for range 2 {
		resp := ts.api.Post("/api/v1/auth/login", body)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	}

	resp := ts.api.Post("/api/v1/auth/login", body)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)

	// Other clients keep their own budget.
	resp = ts.api.Post("/api/v1/auth/login", "X-Forwarded-For: 203.0.113.9", body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestClientIP(t *testing.T) {
	headers := func(values map[string]string) func(string) string {
		return func(name string) string { return values[name] }
	}

	assert.Equal(t, "203.0.113.1", clientIP("10.0.0.1:5000", headers(map[string]string{
		"X-Forwarded-For": "203.0.113.1, 10.0.0.2",
	})))
	assert.Equal(t, "198.51.100.7", clientIP("10.0.0.1:5000", headers(map[string]string{
		"X-Real-IP": "198.51.100.7",
	})))
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1:5000", headers(nil)))
	assert.Equal(t, "unix-socket", clientIP("unix-socket", headers(nil)))
}
