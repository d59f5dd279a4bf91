package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

func TestCartGetOrCreate(t *testing.T) {
	env := newTestEnv(t)
	sess := env.newSession(t)
	sess.Cart = nil

	cart := env.carts.GetOrCreate(sess)
	require.NotNil(t, cart)
	assert.True(t, cart.IsEmpty())
	assert.Same(t, cart, env.carts.GetOrCreate(sess))
}

func TestCartAddItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	cart, err := env.carts.AddItem(ctx, sess, dune.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Quantity(dune.ID))

	cart, err = env.carts.AddItem(ctx, sess, dune.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Quantity(dune.ID))
	assert.Equal(t, 1, cart.Len())

	loaded, err := env.sessions.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Cart.Quantity(dune.ID))
}

func TestCartAddItem_RejectsAndLeavesCartUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 1)
	require.NoError(t, err)

	tests := []struct {
		name     string
		bookID   string
		quantity int
	}{
		{"zero quantity", dune.ID, 0},
		{"negative quantity", dune.ID, -2},
		{"unknown book", "book-missing", 1},
		{"empty id", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.carts.AddItem(ctx, sess, tt.bookID, tt.quantity)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
			assert.Equal(t, map[string]int{dune.ID: 1}, sess.Cart.Items)
		})
	}
}

func TestCartAddItem_SaveFailureRevertsCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	carts := NewCartService(env.store, failingSessions{env.sessions}, env.metrics, env.carts.logger)
	_, err := carts.AddItem(ctx, sess, dune.ID, 1)
	require.ErrorIs(t, err, errSaveFailed)
	assert.True(t, sess.Cart.IsEmpty())
}

func TestCartSetQuantityAndRemove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dune := env.book(t, "Dune", 1299)
	emma := env.book(t, "Emma", 899)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 1)
	require.NoError(t, err)

	cart, err := env.carts.SetQuantity(ctx, sess, dune.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cart.Quantity(dune.ID))

	_, err = env.carts.SetQuantity(ctx, sess, emma.ID, 2)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.carts.SetQuantity(ctx, sess, dune.ID, 0)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.carts.RemoveItem(ctx, sess, emma.ID)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.carts.RemoveItem(ctx, sess, "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	cart, err = env.carts.RemoveItem(ctx, sess, dune.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dune := env.book(t, "Dune", 1299)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 2)
	require.NoError(t, err)

	require.NoError(t, env.carts.Clear(ctx, sess))
	assert.True(t, sess.Cart.IsEmpty())

	// Clearing an empty cart is fine.
	require.NoError(t, env.carts.Clear(ctx, sess))
}

func TestCartResolveBooks_SkipsMissingAndSortsByTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	zorba := env.book(t, "Zorba the Greek", 1500)
	anna := env.book(t, "Anna Karenina", 1100)
	gone := env.book(t, "Gone Tomorrow", 700)
	sess := env.newSession(t)

	for _, b := range []string{zorba.ID, anna.ID, gone.ID} {
		_, err := env.carts.AddItem(ctx, sess, b, 1)
		require.NoError(t, err)
	}
	require.NoError(t, env.catalog.DeleteBook(ctx, gone.ID))

	books, err := env.carts.ResolveBooks(ctx, sess.Cart)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Anna Karenina", books[0].Title)
	assert.Equal(t, "Zorba the Greek", books[1].Title)

	empty, err := env.carts.ResolveBooks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCartSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dune := env.book(t, "Dune", 1299)
	emma := env.book(t, "Emma", 899)
	sess := env.newSession(t)

	_, err := env.carts.AddItem(ctx, sess, dune.ID, 2)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, sess, emma.ID, 1)
	require.NoError(t, err)

	summary, err := env.carts.Summary(ctx, sess.Cart)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 2)
	assert.Equal(t, int64(2598), summary.Lines[0].LineTotalCents)
	assert.Equal(t, 3, summary.TotalQuantity)
	assert.Equal(t, int64(2598+899), summary.TotalCents)
}
