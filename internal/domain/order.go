package domain

import (
	"strings"
	"time"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

// OrderStatus tracks fulfilment of a checked-out cart.
type OrderStatus string

const (
	OrderPlaced   OrderStatus = "PLACED"
	OrderPaid     OrderStatus = "PAID"
	OrderShipped  OrderStatus = "SHIPPED"
	OrderCanceled OrderStatus = "CANCELED"
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced: {OrderPaid, OrderCanceled},
	OrderPaid:   {OrderShipped, OrderCanceled},
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPlaced, OrderPaid, OrderShipped, OrderCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is a snapshot of one cart line at checkout time.
type OrderItem struct {
	ID             string `json:"id"`
	BookID         string `json:"book_id"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// LineTotalCents returns quantity * unit price.
func (i OrderItem) LineTotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// Order is a placed cart.
type Order struct {
	Entity
	UserID     string      `json:"user_id"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	TotalCents int64       `json:"total_cents"`
}

// RecalculateTotal sums the line totals into TotalCents.
func (o *Order) RecalculateTotal() {
	var total int64
	for _, item := range o.Items {
		total += item.LineTotalCents()
	}
	o.TotalCents = total
}

// TransitionTo moves the order to next if the transition is allowed.
func (o *Order) TransitionTo(next OrderStatus, now time.Time) error {
	if !next.IsValid() {
		return domainerrors.Validationf("unknown order status %q", next)
	}
	if o.Status == next {
		return nil
	}
	if !o.Status.CanTransitionTo(next) {
		return domainerrors.InvalidStatef("order cannot move from %s to %s",
			strings.ToLower(string(o.Status)), strings.ToLower(string(next)))
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}
