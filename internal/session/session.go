// Package session stores the per-browser shopping session that holds the cart.
//
// A session is identified by an opaque cookie value. The HTTP layer loads it
// once per request and hands it to handlers through the request context;
// nothing in this package reads globals.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = &domainerrors.Error{Code: domainerrors.CodeNotFound, Message: "session not found"}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Session is one browser's shopping state.
type Session struct {
	ID        string       `json:"id"`
	Cart      *domain.Cart `json:"cart"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// New returns a fresh session with an empty cart and a random UUIDv4 id.
func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Cart:      domain.NewCart(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetOrCreateCart returns the session's cart, creating an empty one on first use.
func (s *Session) GetOrCreateCart() *domain.Cart {
	if s.Cart == nil {
		s.Cart = domain.NewCart()
	}
	return s.Cart
}

// ValidID reports whether id looks like a session id this package issued.
// Cookies carrying anything else are ignored.
func ValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.Version() == 4
}

// Store persists sessions. Implementations expire entries after their TTL.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

func encode(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.GetOrCreateCart()
	return &s, nil
}

func key(id string) string {
	return "session:" + id
}

type ctxKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the HTTP middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
