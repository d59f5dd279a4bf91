package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/store"
)

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.register(t, "buyer@example.com")
	dune := env.book(t, "Dune", 1299)
	emma := env.book(t, "Emma", 899)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 2)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, sess, emma.ID, 1)
	require.NoError(t, err)

	order, err := env.orders.Checkout(ctx, buyer.ID, sess)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderPlaced, order.Status)
	assert.Equal(t, buyer.ID, order.UserID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Dune", order.Items[0].Title)
	assert.Equal(t, int64(1299), order.Items[0].UnitPriceCents)
	assert.Equal(t, int64(2*1299+899), order.TotalCents)

	assert.True(t, sess.Cart.IsEmpty())
	loaded, err := env.sessions.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Cart.IsEmpty())

	stored, err := env.orders.Get(ctx, buyer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalCents, stored.TotalCents)
}

func TestCheckout_PriceSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.register(t, "buyer@example.com")
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.Checkout(ctx, buyer.ID, sess)
	require.NoError(t, err)

	newPrice := int64(2000)
	_, err = env.catalog.UpdateBook(ctx, dune.ID, UpdateBookInput{PriceCents: &newPrice})
	require.NoError(t, err)

	stored, err := env.orders.AdminGet(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1299), stored.Items[0].UnitPriceCents)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.register(t, "buyer@example.com")
	sess := env.newSession(t)

	_, err := env.orders.Checkout(context.Background(), buyer.ID, sess)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCheckout_AllBooksGone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.register(t, "buyer@example.com")
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 1)
	require.NoError(t, err)
	require.NoError(t, env.catalog.DeleteBook(ctx, dune.ID))

	_, err = env.orders.Checkout(ctx, buyer.ID, sess)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCheckout_CartClearFailureStillPlacesOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.register(t, "buyer@example.com")
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 1)
	require.NoError(t, err)

	orders := NewOrderService(env.store, failingSessions{env.sessions}, env.metrics, env.orders.logger)
	order, err := orders.Checkout(ctx, buyer.ID, sess)
	require.NoError(t, err)
	assert.Equal(t, int64(1299), order.TotalCents)
}

func TestOrderGet_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.register(t, "buyer@example.com")
	other := env.register(t, "other@example.com")
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.Checkout(ctx, buyer.ID, sess)
	require.NoError(t, err)

	_, err = env.orders.Get(ctx, other.ID, order.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	mine, err := env.orders.ListMine(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := env.orders.ListMine(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestOrderUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	buyer := env.register(t, "buyer@example.com")
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.Checkout(ctx, buyer.ID, sess)
	require.NoError(t, err)

	paid, err := env.orders.UpdateStatus(ctx, order.ID, domain.OrderPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, paid.Status)

	shipped, err := env.orders.UpdateStatus(ctx, order.ID, domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, shipped.Status)

	_, err = env.orders.UpdateStatus(ctx, order.ID, domain.OrderCanceled)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)

	_, err = env.orders.UpdateStatus(ctx, order.ID, "LOST")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	list, err := env.orders.List(ctx, store.OrderFilter{Status: domain.OrderShipped}, store.PageParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	require.NoError(t, env.orders.AdminDelete(ctx, order.ID))
	_, err = env.orders.AdminGet(ctx, order.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
