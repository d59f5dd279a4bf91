package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/id"
	"github.com/bookreview/bookreview-server/internal/search"
	"github.com/bookreview/bookreview-server/internal/store"
	"github.com/bookreview/bookreview-server/internal/util"
	"github.com/bookreview/bookreview-server/internal/validation"
)

// BookSearcher runs full-text book queries.
type BookSearcher interface {
	Search(ctx context.Context, params search.Params) (*search.Result, error)
}

// CatalogService serves categories and books and keeps the search index
// in step with catalog writes.
type CatalogService struct {
	store     store.Store
	indexer   store.SearchIndexer
	searcher  BookSearcher
	validator *validation.Validator
	logger    *slog.Logger
	now       clock
}

// NewCatalogService creates a catalog service. A nil indexer disables
// indexing; a nil searcher makes Search fail.
func NewCatalogService(st store.Store, indexer store.SearchIndexer, searcher BookSearcher, logger *slog.Logger) *CatalogService {
	if indexer == nil {
		indexer = store.NewNoopSearchIndexer()
	}
	return &CatalogService{
		store:     st,
		indexer:   indexer,
		searcher:  searcher,
		validator: validation.New(),
		logger:    logger,
		now:       utcNow,
	}
}

// === Categories ===

// CategoryInput contains the fields of a new category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateCategoryInput is a partial category update.
type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ListCategories returns every category ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx)
}

// GetCategory returns one category.
func (s *CatalogService) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.store.GetCategory(ctx, categoryID)
}

// CreateCategory adds a category. Names are unique ignoring case.
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	categoryID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	now := s.now()
	c := &domain.Category{
		Entity:      domain.Entity{ID: categoryID, CreatedAt: now, UpdatedAt: now},
		Name:        in.Name,
		Slug:        util.Slugify(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if c.Slug == "" {
		return nil, domainerrors.Validation("name must contain letters or digits")
	}

	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a category with this name already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created", "category_id", c.ID, "slug", c.Slug)
	return c, nil
}

// UpdateCategory renames or re-describes a category.
func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID string, in UpdateCategoryInput) (*domain.Category, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		in.Name = &trimmed
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	c, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = *in.Name
		c.Slug = util.Slugify(*in.Name)
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	c.UpdatedAt = s.now()

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a category with this name already exists")
		}
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category. Books and requests keep their other
// categories; the affected books are re-indexed.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	affected, err := s.store.ListBooks(ctx, store.BookFilter{CategoryID: categoryID})
	if err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return err
	}

	for _, b := range affected {
		b.CategoryIDs = without(b.CategoryIDs, categoryID)
		s.index(ctx, b)
	}

	s.logger.InfoContext(ctx, "category deleted", "category_id", categoryID, "books", len(affected))
	return nil
}

// === Books ===

// BookInput contains the fields of a new book.
type BookInput struct {
	Title         string   `json:"title" validate:"required,min=1,max=255"`
	Author        string   `json:"author" validate:"required,min=1,max=255"`
	Description   string   `json:"description" validate:"max=20000"`
	PriceCents    int64    `json:"price_cents" validate:"gte=0"`
	PublishedYear int      `json:"published_year" validate:"omitempty,gte=0,lte=3000"`
	CategoryIDs   []string `json:"category_ids" validate:"max=20,dive,max=64"`
}

// UpdateBookInput is a partial book update.
type UpdateBookInput struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Author        *string  `json:"author" validate:"omitempty,min=1,max=255"`
	Description   *string  `json:"description" validate:"omitempty,max=20000"`
	PriceCents    *int64   `json:"price_cents" validate:"omitempty,gte=0"`
	PublishedYear *int     `json:"published_year" validate:"omitempty,gte=0,lte=3000"`
	CategoryIDs   []string `json:"category_ids" validate:"omitempty,max=20,dive,max=64"`
}

// ListBooks returns books ordered by title, optionally only those in the
// category with categorySlug.
func (s *CatalogService) ListBooks(ctx context.Context, categorySlug string) ([]*domain.Book, error) {
	var filter store.BookFilter
	if categorySlug != "" {
		c, err := s.store.GetCategoryBySlug(ctx, categorySlug)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = c.ID
	}
	return s.store.ListBooks(ctx, filter)
}

// GetBook returns one book.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// CreateBook adds a book to the catalog and the search index.
func (s *CatalogService) CreateBook(ctx context.Context, in BookInput) (*domain.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	cats := dedupeIDs(in.CategoryIDs)
	if err := checkCategories(ctx, s.store, cats); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := s.now()
	b := &domain.Book{
		Entity:        domain.Entity{ID: bookID, CreatedAt: now, UpdatedAt: now},
		Title:         in.Title,
		Slug:          util.Slugify(in.Title),
		Author:        in.Author,
		Description:   util.DescriptionToMarkdown(in.Description),
		PriceCents:    in.PriceCents,
		PublishedYear: in.PublishedYear,
		CategoryIDs:   cats,
	}

	if err := s.store.CreateBook(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	s.index(ctx, b)

	s.logger.InfoContext(ctx, "book created", "book_id", b.ID, "title", b.Title)
	return b, nil
}

// UpdateBook edits a book and re-indexes it.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, in UpdateBookInput) (*domain.Book, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	b, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domainerrors.Validation("title cannot be empty")
		}
		b.Title = title
		b.Slug = util.Slugify(title)
	}
	if in.Author != nil {
		author := strings.TrimSpace(*in.Author)
		if author == "" {
			return nil, domainerrors.Validation("author cannot be empty")
		}
		b.Author = author
	}
	if in.Description != nil {
		b.Description = util.DescriptionToMarkdown(*in.Description)
	}
	if in.PriceCents != nil {
		b.PriceCents = *in.PriceCents
	}
	if in.PublishedYear != nil {
		b.PublishedYear = *in.PublishedYear
	}
	if in.CategoryIDs != nil {
		cats := dedupeIDs(in.CategoryIDs)
		if err := checkCategories(ctx, s.store, cats); err != nil {
			return nil, err
		}
		b.CategoryIDs = cats
	}
	b.UpdatedAt = s.now()

	if err := s.store.UpdateBook(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// DeleteBook removes a book from the catalog and the index. Carts that
// still hold its id skip it when resolved.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}
	if err := s.indexer.DeleteBook(ctx, bookID); err != nil {
		s.logger.WarnContext(ctx, "failed to remove book from search index", "book_id", bookID, "error", err)
	}
	s.logger.InfoContext(ctx, "book deleted", "book_id", bookID)
	return nil
}

// SearchInput configures a book search.
type SearchInput struct {
	Query      string
	CategoryID string
	Limit      int
	Offset     int
	Sort       string
}

// Search runs a full-text book query.
func (s *CatalogService) Search(ctx context.Context, in SearchInput) (*search.Result, error) {
	if s.searcher == nil {
		return nil, domainerrors.Internal("search is not available")
	}
	switch in.Sort {
	case "", search.SortRelevance, search.SortTitle, search.SortRecent:
	default:
		return nil, domainerrors.Validationf("unknown sort %q", in.Sort)
	}
	return s.searcher.Search(ctx, search.Params{
		Query:      in.Query,
		CategoryID: in.CategoryID,
		Limit:      in.Limit,
		Offset:     in.Offset,
		SortBy:     in.Sort,
		Highlight:  true,
	})
}

// index logs rather than fails: the relational write already succeeded and
// the index is rebuilt from the store on startup.
func (s *CatalogService) index(ctx context.Context, b *domain.Book) {
	if err := s.indexer.IndexBook(ctx, b); err != nil {
		s.logger.WarnContext(ctx, "failed to index book", "book_id", b.ID, "error", err)
	}
}

func dedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func without(ids []string, drop string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
