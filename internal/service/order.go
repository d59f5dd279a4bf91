package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/id"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/session"
	"github.com/bookreview/bookreview-server/internal/store"
)

// OrderService turns carts into orders and runs the order back-office.
type OrderService struct {
	store    store.Store
	sessions session.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      clock
}

// NewOrderService creates a new order service.
func NewOrderService(st store.Store, sessions session.Store, m *metrics.Metrics, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:    st,
		sessions: sessions,
		metrics:  m,
		logger:   logger,
		now:      utcNow,
	}
}

// Checkout snapshots the session cart into a PLACED order for userID and
// empties the cart. Books that left the catalog are dropped from the order.
func (s *OrderService) Checkout(ctx context.Context, userID string, sess *session.Session) (*domain.Order, error) {
	cart := sess.GetOrCreateCart()
	if cart.IsEmpty() {
		return nil, domainerrors.Validation("cart is empty")
	}

	books, err := resolveCartBooks(ctx, s.store, cart)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, domainerrors.Validation("none of the books in the cart are available")
	}

	orderID, err := id.Generate(id.PrefixOrder)
	if err != nil {
		return nil, fmt.Errorf("generate order ID: %w", err)
	}

	now := s.now()
	order := &domain.Order{
		Entity: domain.Entity{ID: orderID, CreatedAt: now, UpdatedAt: now},
		UserID: userID,
		Status: domain.OrderPlaced,
		Items:  make([]domain.OrderItem, 0, len(books)),
	}
	for _, b := range books {
		itemID, err := id.Generate(id.PrefixOrderItem)
		if err != nil {
			return nil, fmt.Errorf("generate order item ID: %w", err)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:             itemID,
			BookID:         b.ID,
			Title:          b.Title,
			Quantity:       cart.Quantity(b.ID),
			UnitPriceCents: b.PriceCents,
		})
	}
	order.RecalculateTotal()

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	sess.Cart = domain.NewCart()
	sess.UpdatedAt = now
	if err := s.sessions.Save(ctx, sess); err != nil {
		// The order exists; a stale cart is the lesser problem.
		s.logger.WarnContext(ctx, "failed to clear cart after checkout", "session_id", sess.ID, "error", err)
	}

	s.metrics.RecordOrderPlaced()
	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"user_id", userID,
		"items", len(order.Items),
		"total_cents", order.TotalCents,
	)
	return order, nil
}

// ListMine returns the user's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

// Get returns an order placed by userID.
func (s *OrderService) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainerrors.Forbidden("you do not own this order")
	}
	return order, nil
}

// List returns all orders for the admin back-office.
func (s *OrderService) List(ctx context.Context, filter store.OrderFilter, params store.PageParams) (*store.Page[*domain.Order], error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domainerrors.Validationf("unknown status %q", filter.Status)
	}
	return s.store.ListOrders(ctx, filter, params)
}

// AdminGet returns any order.
func (s *OrderService) AdminGet(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// UpdateStatus moves an order along PLACED -> PAID -> SHIPPED, or to
// CANCELED before it ships.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	prev := order.Status
	if err := order.TransitionTo(next, s.now()); err != nil {
		return nil, err
	}
	if order.Status == prev {
		return order, nil
	}

	if err := s.store.UpdateOrderStatus(ctx, order.ID, prev, order.Status, order.UpdatedAt); err != nil {
		return nil, statusConflict(err, "order")
	}

	s.logger.InfoContext(ctx, "order status changed", "order_id", order.ID, "from", prev, "to", order.Status)
	return order, nil
}

// AdminDelete removes an order and its items.
func (s *OrderService) AdminDelete(ctx context.Context, orderID string) error {
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "order deleted", "order_id", orderID)
	return nil
}
