package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_PublicBrowse(t *testing.T) {
	ts := setupTestServer(t)
	admin, _ := ts.register(t, "admin@example.com")

	scifi := ts.createCategory(t, admin, "Science Fiction")
	poetry := ts.createCategory(t, admin, "Poetry")
	dune := ts.createBook(t, admin, "Dune", 1299, scifi.ID)
	ts.createBook(t, admin, "Leaves of Grass", 899, poetry.ID)

	resp := ts.api.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	cats := decode[ListCategoriesResponse](t, resp.Body.Bytes()).Data.Categories
	require.Len(t, cats, 2)
	assert.Equal(t, "Poetry", cats[0].Name)
	assert.Equal(t, "science-fiction", cats[1].Slug)

	resp = ts.api.Get("/api/v1/books")
	require.Equal(t, http.StatusOK, resp.Code)
	all := decode[ListBooksResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, 2, all.Total)
	assert.Equal(t, "Dune", all.Books[0].Title)

	resp = ts.api.Get("/api/v1/books?category=science-fiction")
	require.Equal(t, http.StatusOK, resp.Code)
	filtered := decode[ListBooksResponse](t, resp.Body.Bytes()).Data
	require.Len(t, filtered.Books, 1)
	assert.Equal(t, dune.ID, filtered.Books[0].ID)

	resp = ts.api.Get("/api/v1/books?category=cookbooks")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + dune.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	got := decode[BookResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, int64(1299), got.PriceCents)
	assert.Equal(t, []string{scifi.ID}, got.CategoryIDs)

	resp = ts.api.Get("/api/v1/books/book-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestAdminCatalog_RequiresAdmin(t *testing.T) {
	ts := setupTestServer(t)
	ts.register(t, "admin@example.com")
	customer, _ := ts.register(t, "customer@example.com")

	resp := ts.api.Post("/api/v1/admin/categories", map[string]any{"name": "Anonymous"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/admin/categories", bearer(customer), map[string]any{"name": "Customer"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	env := decode[any](t, resp.Body.Bytes())
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestAdminCatalog_CategoryLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	admin, _ := ts.register(t, "admin@example.com")

	history := ts.createCategory(t, admin, "History")
	fantasy := ts.createCategory(t, admin, "Fantasy")

	resp := ts.api.Post("/api/v1/admin/categories", bearer(admin), map[string]any{"name": "history"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Patch("/api/v1/admin/categories/"+history.ID, bearer(admin), map[string]any{
		"description": "Things that happened",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "Things that happened", decode[CategoryResponse](t, resp.Body.Bytes()).Data.Description)

	book := ts.createBook(t, admin, "The Histories", 1500, history.ID, fantasy.ID)

	resp = ts.api.Delete("/api/v1/admin/categories/"+history.ID, bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/admin/categories/"+history.ID, bearer(admin))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{fantasy.ID}, decode[BookResponse](t, resp.Body.Bytes()).Data.CategoryIDs)
}

func TestAdminCatalog_BookLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	admin, _ := ts.register(t, "admin@example.com")

	resp := ts.api.Post("/api/v1/admin/books", bearer(admin), map[string]any{
		"title":       "Neuromancer",
		"author":      "William Gibson",
		"description": "<p>The sky was <strong>static</strong>.</p>",
		"price_cents": 1099,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	book := decode[BookResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "neuromancer", book.Slug)
	assert.Contains(t, book.Description, "**static**")

	resp = ts.api.Post("/api/v1/admin/books", bearer(admin), map[string]any{
		"title":        "Orphan",
		"author":       "Nobody",
		"price_cents":  100,
		"category_ids": []string{"cat-missing"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/admin/books", bearer(admin), map[string]any{
		"title":       "Negative",
		"author":      "Nobody",
		"price_cents": -1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = ts.api.Patch("/api/v1/admin/books/"+book.ID, bearer(admin), map[string]any{"price_cents": 1299})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[BookResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, int64(1299), updated.PriceCents)
	assert.Equal(t, "Neuromancer", updated.Title)

	resp = ts.api.Delete("/api/v1/admin/books/"+book.ID, bearer(admin))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchBooks(t *testing.T) {
	ts := setupTestServer(t)
	admin, _ := ts.register(t, "admin@example.com")

	scifi := ts.createCategory(t, admin, "Science Fiction")
	dune := ts.createBook(t, admin, "Dune", 1299, scifi.ID)
	ts.createBook(t, admin, "Emma", 799)

	resp := ts.api.Get("/api/v1/search/books?q=dune")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	result := decode[SearchResponse](t, resp.Body.Bytes()).Data
	assert.Equal(t, "dune", result.Query)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, dune.ID, result.Hits[0].ID)

	// Typo tolerance.
	resp = ts.api.Get("/api/v1/search/books?q=dume")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, decode[SearchResponse](t, resp.Body.Bytes()).Data.Hits)

	resp = ts.api.Get("/api/v1/search/books?category_id=" + scifi.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	byCategory := decode[SearchResponse](t, resp.Body.Bytes()).Data
	require.Len(t, byCategory.Hits, 1)
	assert.Equal(t, dune.ID, byCategory.Hits[0].ID)

	resp = ts.api.Get("/api/v1/search/books?sort=price")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = ts.api.Get("/api/v1/search/books?limit=1000")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
