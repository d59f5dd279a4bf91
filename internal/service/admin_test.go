package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/store"
)

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "admin@example.com")
	env.register(t, "shopper@example.com")
	env.category(t, "Classics")
	env.book(t, "Emma", 899)

	_, err := env.requests.Create(ctx, owner.ID, CreateRequestInput{Title: "Dune"})
	require.NoError(t, err)

	counts, err := env.admin.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Users)
	assert.Equal(t, 1, counts.Books)
	assert.Equal(t, 1, counts.Categories)
	assert.Equal(t, 1, counts.PendingRequests)
	assert.Equal(t, 0, counts.Orders)
}

func TestAdminUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.register(t, "admin@example.com")
	shopper := env.register(t, "shopper@example.com")

	_, err := env.requests.Create(ctx, shopper.ID, CreateRequestInput{Title: "Dune"})
	require.NoError(t, err)

	page, err := env.admin.ListUsers(ctx, store.PageParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	detail, err := env.admin.GetUser(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, shopper.Email, detail.Email)
	assert.Equal(t, 1, detail.RequestCount)
	assert.Equal(t, 0, detail.OrderCount)

	_, err = env.admin.GetUser(ctx, "usr-missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = env.admin.DeleteUser(ctx, admin.ID, admin.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, env.admin.DeleteUser(ctx, admin.ID, shopper.ID))
	_, err = env.admin.GetUser(ctx, shopper.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	mine, err := env.requests.ListMine(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	assert.ErrorIs(t, env.admin.DeleteUser(ctx, admin.ID, "usr-missing"), domainerrors.ErrNotFound)
}
