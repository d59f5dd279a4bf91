package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedUser inserts a customer and returns it.
func seedUser(t *testing.T, s *Store, id, email string) *domain.User {
	t.Helper()
	now := time.Now()
	u := &domain.User{
		Entity:       domain.Entity{ID: id, CreatedAt: now, UpdatedAt: now},
		Email:        email,
		PasswordHash: "$argon2id$fake",
		DisplayName:  "Test User",
		Role:         domain.RoleCustomer,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// seedCategory inserts a category and returns it.
func seedCategory(t *testing.T, s *Store, id, name string) *domain.Category {
	t.Helper()
	now := time.Now()
	c := &domain.Category{
		Entity: domain.Entity{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:   name,
		Slug:   id + "-slug",
	}
	if err := s.CreateCategory(context.Background(), c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

// seedBook inserts a book and returns it.
func seedBook(t *testing.T, s *Store, id, title string, priceCents int64, categoryIDs ...string) *domain.Book {
	t.Helper()
	now := time.Now()
	b := &domain.Book{
		Entity:      domain.Entity{ID: id, CreatedAt: now, UpdatedAt: now},
		Title:       title,
		Slug:        id,
		Author:      "Author " + id,
		PriceCents:  priceCents,
		CategoryIDs: categoryIDs,
	}
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	return b
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	tables := []string{
		"users", "sessions", "categories", "books", "book_categories",
		"requested_books", "requested_book_categories", "orders", "order_items",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	for range 2 {
		s, err := Open(dbPath, nil)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		s.Close()
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestPlaceholders(t *testing.T) {
	cases := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range cases {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestFormatTime_SortsLexically(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	later := base.Add(500 * time.Millisecond)
	if !(formatTime(base) < formatTime(later)) {
		t.Errorf("expected %s < %s", formatTime(base), formatTime(later))
	}
	got, err := parseTime(formatTime(later))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !got.Equal(later) {
		t.Errorf("round trip: got %v want %v", got, later)
	}
}
