package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/auth"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/ratelimit"
	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/service"
	"github.com/bookreview/bookreview-server/internal/session"
	"github.com/bookreview/bookreview-server/internal/store/sqlite"
)

const testPassword = "correct-horse-battery"

// testEnvelope mirrors the response envelope with a typed data field.
type testEnvelope[T any] struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api      humatest.TestAPI
	st       *sqlite.Store
	sessions *session.BadgerStore
	index    *search.BookIndex
	metrics  *metrics.Metrics
}

type serverOption func(*Options)

func withAuthLimit(rps float64, burst int) serverOption {
	return func(o *Options) { o.AuthRateLimiter = ratelimit.New(rps, burst) }
}

func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "bookstore.db"), logger)
	require.NoError(t, err)

	sessions, err := session.OpenBadger("", time.Hour, logger)
	require.NoError(t, err)

	idx, err := search.OpenInMemory(logger)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(make([]byte, 32), 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	m := metrics.New()
	sessionService := service.NewSessionService(st, tokens, logger)
	services := &Services{
		Auth:    service.NewAuthService(st, tokens, sessionService, logger),
		Catalog: service.NewCatalogService(st, idx, idx, logger),
		Cart:    service.NewCartService(st, sessions, m, logger),
		Order:   service.NewOrderService(st, sessions, m, logger),
		Request: service.NewRequestService(st, m, logger),
		Admin:   service.NewAdminService(st, logger),
	}

	options := Options{
		Name:            "Test Bookstore",
		Version:         "test",
		Cookie:          CookieConfig{Name: "bookstore_session", TTL: time.Hour},
		Sessions:        sessions,
		Metrics:         m,
		SearchIndex:     idx,
		AuthRateLimiter: ratelimit.New(1000, 1000),
	}
	for _, opt := range opts {
		opt(&options)
	}

	srv := NewServer(st, services, options, logger)

	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		_ = idx.Close()
		_ = sessions.Close()
		_ = st.Close()
	})

	return &testServer{
		Server:   srv,
		api:      humatest.Wrap(t, srv.API()),
		st:       st,
		sessions: sessions,
		index:    idx,
		metrics:  m,
	}
}

// register creates an account and returns its access token and user id.
// The first account registered on a server is the admin.
func (ts *testServer) register(t *testing.T, email string) (token, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[AuthResponse](t, resp.Body.Bytes())
	return env.Data.AccessToken, env.Data.User.ID
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

// createCategory and createBook go through the admin API.
func (ts *testServer) createCategory(t *testing.T, adminToken, name string) CategoryResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/admin/categories", bearer(adminToken), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[CategoryResponse](t, resp.Body.Bytes()).Data
}

func (ts *testServer) createBook(t *testing.T, adminToken, title string, priceCents int64, categoryIDs ...string) BookResponse {
	t.Helper()
	body := map[string]any{
		"title":       title,
		"author":      "Test Author",
		"price_cents": priceCents,
	}
	if len(categoryIDs) > 0 {
		body["category_ids"] = categoryIDs
	}
	resp := ts.api.Post("/api/v1/admin/books", bearer(adminToken), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[BookResponse](t, resp.Body.Bytes()).Data
}

// sessionCookie returns the shopping-session cookie header set by resp.
func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "bookstore_session" {
			return "Cookie: " + c.Name + "=" + c.Value
		}
	}
	t.Fatalf("no session cookie in response")
	return ""
}
