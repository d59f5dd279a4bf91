package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/session"
	"github.com/bookreview/bookreview-server/internal/store"
)

// CartService accumulates books in the shopping session's cart.
// Concurrent writes to one session are last-write-wins.
type CartService struct {
	store    store.Store
	sessions session.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      clock
}

// NewCartService creates a new cart service.
func NewCartService(st store.Store, sessions session.Store, m *metrics.Metrics, logger *slog.Logger) *CartService {
	return &CartService{
		store:    st,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
		now:      utcNow,
	}
}

// CartLine is one resolved cart entry.
type CartLine struct {
	Book           *domain.Book `json:"book"`
	Quantity       int          `json:"quantity"`
	LineTotalCents int64        `json:"line_total_cents"`
}

// CartSummary is the cart joined with current catalog prices.
type CartSummary struct {
	Lines         []CartLine `json:"lines"`
	TotalQuantity int        `json:"total_quantity"`
	TotalCents    int64      `json:"total_cents"`
}

// GetOrCreate returns the session's cart, creating an empty one on first use.
func (s *CartService) GetOrCreate(sess *session.Session) *domain.Cart {
	return sess.GetOrCreateCart()
}

// AddItem adds quantity copies of bookID. Adding a book already in the cart
// increments its quantity. On any error the cart is left unchanged.
func (s *CartService) AddItem(ctx context.Context, sess *session.Session, bookID string, quantity int) (*domain.Cart, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := s.requireBook(ctx, bookID); err != nil {
		return nil, err
	}

	var total int
	cart, err := s.mutate(ctx, sess, func(c *domain.Cart) error {
		n, err := c.Add(bookID, quantity)
		total = n
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCartItemAdded()
	s.logger.InfoContext(ctx, "cart item added", "session_id", sess.ID, "book_id", bookID, "quantity", total)
	return cart, nil
}

// SetQuantity replaces the quantity of a book already in the cart.
func (s *CartService) SetQuantity(ctx context.Context, sess *session.Session, bookID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, sess, func(c *domain.Cart) error {
		return c.SetQuantity(bookID, quantity)
	})
}

// RemoveItem deletes a book from the cart.
func (s *CartService) RemoveItem(ctx context.Context, sess *session.Session, bookID string) (*domain.Cart, error) {
	cart, err := s.mutate(ctx, sess, func(c *domain.Cart) error {
		return c.Remove(bookID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "cart item removed", "session_id", sess.ID, "book_id", bookID)
	return cart, nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, sess *session.Session) error {
	_, err := s.mutate(ctx, sess, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
	return err
}

// ResolveBooks returns the catalog books in cart ordered by title. Ids that
// no longer exist are skipped.
func (s *CartService) ResolveBooks(ctx context.Context, cart *domain.Cart) ([]*domain.Book, error) {
	return resolveCartBooks(ctx, s.store, cart)
}

// Summary prices the cart at current catalog prices.
func (s *CartService) Summary(ctx context.Context, cart *domain.Cart) (*CartSummary, error) {
	books, err := s.ResolveBooks(ctx, cart)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{Lines: make([]CartLine, 0, len(books))}
	for _, b := range books {
		q := cart.Quantity(b.ID)
		line := CartLine{Book: b, Quantity: q, LineTotalCents: int64(q) * b.PriceCents}
		summary.Lines = append(summary.Lines, line)
		summary.TotalQuantity += q
		summary.TotalCents += line.LineTotalCents
	}
	return summary, nil
}

func (s *CartService) requireBook(ctx context.Context, bookID string) error {
	if bookID == "" {
		return domainerrors.Validation("book id is required")
	}
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if isNotFound(err) {
			return domainerrors.Validationf("unknown book %q", bookID)
		}
		return fmt.Errorf("get book: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the cart and swaps it in only after the
// session has been saved.
func (s *CartService) mutate(ctx context.Context, sess *session.Session, fn func(*domain.Cart) error) (*domain.Cart, error) {
	next := sess.GetOrCreateCart().Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	prevCart, prevUpdated := sess.Cart, sess.UpdatedAt
	sess.Cart = next
	sess.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		sess.Cart, sess.UpdatedAt = prevCart, prevUpdated
		return nil, fmt.Errorf("save session: %w", err)
	}
	return next, nil
}
