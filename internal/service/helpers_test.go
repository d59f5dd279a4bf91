package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/auth"
	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/session"
	"github.com/bookreview/bookreview-server/internal/store/sqlite"
)

var errSaveFailed = errors.New("session backend down")

// testEnv wires every service against a temporary SQLite database, an
// in-memory Badger session store and an in-memory search index.
type testEnv struct {
	store    *sqlite.Store
	sessions *session.BadgerStore
	index    *search.BookIndex
	metrics  *metrics.Metrics
	tokens   *auth.TokenService

	auth     *AuthService
	sessionS *SessionService
	requests *RequestService
	carts    *CartService
	orders   *OrderService
	catalog  *CatalogService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "bookstore.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sessions, err := session.OpenBadger("", time.Hour, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	idx, err := search.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	tokens, err := auth.NewTokenService(make([]byte, 32), 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	m := metrics.New()
	sessionS := NewSessionService(st, tokens, logger)

	return &testEnv{
		store:    st,
		sessions: sessions,
		index:    idx,
		metrics:  m,
		tokens:   tokens,
		auth:     NewAuthService(st, tokens, sessionS, logger),
		sessionS: sessionS,
		requests: NewRequestService(st, m, logger),
		carts:    NewCartService(st, sessions, m, logger),
		orders:   NewOrderService(st, sessions, m, logger),
		catalog:  NewCatalogService(st, idx, idx, logger),
		admin:    NewAdminService(st, logger),
	}
}

func (e *testEnv) register(t *testing.T, email string) *domain.User {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: "correct-horse-battery",
	}, ClientInfo{IPAddress: "127.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	return resp.User
}

func (e *testEnv) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := e.catalog.CreateCategory(context.Background(), CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) book(t *testing.T, title string, priceCents int64, categoryIDs ...string) *domain.Book {
	t.Helper()
	b, err := e.catalog.CreateBook(context.Background(), BookInput{
		Title:       title,
		Author:      "Test Author",
		PriceCents:  priceCents,
		CategoryIDs: categoryIDs,
	})
	require.NoError(t, err)
	return b
}

func (e *testEnv) newSession(t *testing.T) *session.Session {
	t.Helper()
	sess := session.New(time.Now().UTC())
	require.NoError(t, e.sessions.Save(context.Background(), sess))
	return sess
}

// failingSessions rejects every Save.
type failingSessions struct {
	session.Store
}

func (failingSessions) Save(context.Context, *session.Session) error {
	return errSaveFailed
}
