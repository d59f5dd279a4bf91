package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminDashboard(t *testing.T) {
	ts := setupTestServer(t)
	admin, _ := ts.register(t, "admin@example.com")
	customer, _ := ts.register(t, "customer@example.com")

	cat := ts.createCategory(t, admin, "Drama")
	ts.createBook(t, admin, "Hamlet", 900, cat.ID)
	ts.createRequest(t, customer, "Macbeth")

	resp := ts.api.Get("/api/v1/admin/dashboard", bearer(customer))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/admin/dashboard", bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	d := decode[DashboardResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, 2, d.Users)
	assert.Equal(t, 1, d.Books)
	assert.Equal(t, 1, d.Categories)
	assert.Equal(t, 1, d.Requests)
	assert.Equal(t, 1, d.PendingRequests)
	assert.Zero(t, d.Orders)
}

func TestAdminUsers(t *testing.T) {
	ts := setupTestServer(t)
	admin, adminID := ts.register(t, "admin@example.com")
	customer, customerID := ts.register(t, "customer@example.com")
	ts.createRequest(t, customer, "Dracula")

	resp := ts.api.Get("/api/v1/admin/users", bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	users := decode[ListUsersResponse](t, resp.Body.Bytes()).Data
	assert.Len(t, users.Users, 2)
	assert.False(t, users.HasMore)

	resp = ts.api.Get("/api/v1/admin/users/"+customerID, bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decode[AdminUserResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "customer@example.com", detail.Email)
	require.NotNil(t, detail.RequestCount)
	assert.Equal(t, 1, *detail.RequestCount)
	require.NotNil(t, detail.OrderCount)
	assert.Zero(t, *detail.OrderCount)

	resp = ts.api.Delete("/api/v1/admin/users/"+adminID, bearer(admin))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/admin/users/"+customerID, bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/admin/users/"+customerID, bearer(admin))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// The deleted user's token no longer resolves to an account.
	resp = ts.api.Get("/api/v1/auth/me", bearer(customer))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminOrders(t *testing.T) {
	ts := setupTestServer(t)
	admin, _ := ts.register(t, "admin@example.com")
	customer, _ := ts.register(t, "customer@example.com")
	book := ts.createBook(t, admin, "Walden", 700)

	resp := ts.api.Post("/api/v1/cart/items", map[string]any{"book_id": book.ID})
	require.Equal(t, http.StatusOK, resp.Code)
	cookie := sessionCookie(t, resp.Result())
	resp = ts.api.Post("/api/v1/cart/checkout", cookie, bearer(customer))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	order := decode[OrderResponse](t, resp.Body.Bytes()).Data

	resp = ts.api.Get("/api/v1/admin/orders?status=PLACED", bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page := decode[AdminListOrdersResponse](t, resp.Body.Bytes()).Data
	require.Len(t, page.Orders, 1)
	assert.Equal(t, order.ID, page.Orders[0].ID)

	resp = ts.api.Patch("/api/v1/admin/orders/"+order.ID, bearer(admin), map[string]any{"status": "SHIPPED"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	for _, status := range []string{"PAID", "SHIPPED"} {
		resp = ts.api.Patch("/api/v1/admin/orders/"+order.ID, bearer(admin), map[string]any{"status": status})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Equal(t, status, string(decode[OrderResponse](t, resp.Body.Bytes()).Data.Status))
	}

	resp = ts.api.Patch("/api/v1/admin/orders/"+order.ID, bearer(admin), map[string]any{"status": "CANCELED"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Get("/api/v1/admin/orders/"+order.ID, bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete("/api/v1/admin/orders/"+order.ID, bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/orders", bearer(customer))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[ListOrdersResponse](t, resp.Body.Bytes()).Data.Orders)
}
