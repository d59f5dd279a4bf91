package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/search"
)

func TestCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sf := env.category(t, "Science Fiction")
	assert.Equal(t, "science-fiction", sf.Slug)

	_, err := env.catalog.CreateCategory(ctx, CategoryInput{Name: "science fiction"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	_, err = env.catalog.CreateCategory(ctx, CategoryInput{Name: "  "})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	renamed, err := env.catalog.UpdateCategory(ctx, sf.ID, UpdateCategoryInput{Name: strPtr("Sci-Fi")})
	require.NoError(t, err)
	assert.Equal(t, "sci-fi", renamed.Slug)

	list, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sci-Fi", list[0].Name)

	require.NoError(t, env.catalog.DeleteCategory(ctx, sf.ID))
	_, err = env.catalog.GetCategory(ctx, sf.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestDeleteCategory_BooksKeepOtherCategories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sf := env.category(t, "Science Fiction")
	classics := env.category(t, "Classics")
	dune := env.book(t, "Dune", 1299, sf.ID, classics.ID)

	require.NoError(t, env.catalog.DeleteCategory(ctx, sf.ID))

	b, err := env.catalog.GetBook(ctx, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{classics.ID}, b.CategoryIDs)

	res, err := env.catalog.Search(ctx, SearchInput{CategoryID: sf.ID})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestBookCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sf := env.category(t, "Science Fiction")

	b, err := env.catalog.CreateBook(ctx, BookInput{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Description: "<p>Spice <strong>must</strong> flow</p>",
		PriceCents:  1299,
		CategoryIDs: []string{sf.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "dune", b.Slug)
	assert.Equal(t, "Spice **must** flow", b.Description)

	_, err = env.catalog.CreateBook(ctx, BookInput{Title: "X", Author: "Y", CategoryIDs: []string{"cat-nope"}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.catalog.CreateBook(ctx, BookInput{Title: "X", Author: "Y", PriceCents: -1})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	updated, err := env.catalog.UpdateBook(ctx, b.ID, UpdateBookInput{Title: strPtr("Dune Messiah")})
	require.NoError(t, err)
	assert.Equal(t, "dune-messiah", updated.Slug)
	assert.Equal(t, "Frank Herbert", updated.Author)

	_, err = env.catalog.UpdateBook(ctx, b.ID, UpdateBookInput{Author: strPtr(" ")})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	require.NoError(t, env.catalog.DeleteBook(ctx, b.ID))
	_, err = env.catalog.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListBooks_ByCategorySlug(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sf := env.category(t, "Science Fiction")
	env.book(t, "Dune", 1299, sf.ID)
	env.book(t, "Emma", 899)

	all, err := env.catalog.ListBooks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scifi, err := env.catalog.ListBooks(ctx, "science-fiction")
	require.NoError(t, err)
	require.Len(t, scifi, 1)
	assert.Equal(t, "Dune", scifi[0].Title)

	_, err = env.catalog.ListBooks(ctx, "poetry")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSearch_FollowsCatalogWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dune := env.book(t, "Dune", 1299)
	env.book(t, "Emma", 899)

	res, err := env.catalog.Search(ctx, SearchInput{Query: "dune"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, dune.ID, res.Hits[0].ID)

	_, err = env.catalog.UpdateBook(ctx, dune.ID, UpdateBookInput{Title: strPtr("Arrakis")})
	require.NoError(t, err)

	res, err = env.catalog.Search(ctx, SearchInput{Query: "arrakis"})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 1)

	require.NoError(t, env.catalog.DeleteBook(ctx, dune.ID))
	res, err = env.catalog.Search(ctx, SearchInput{Query: "arrakis"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearch_UnknownSort(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.Search(context.Background(), SearchInput{Sort: "price"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.catalog.Search(context.Background(), SearchInput{Sort: search.SortRecent})
	assert.NoError(t, err)
}

func TestSearch_Unavailable(t *testing.T) {
	env := newTestEnv(t)
	catalog := NewCatalogService(env.store, nil, nil, env.catalog.logger)

	_, err := catalog.Search(context.Background(), SearchInput{Query: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrInternal)
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupeIDs([]string{" a", "b", "a", ""}))
	assert.Empty(t, dedupeIDs(nil))
}
