package sqlite

import (
	"context"
	"database/sql"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

const (
	bookCategoriesTable = "book_categories"
	bookOwnerCol        = "book_id"
)

const bookColumns = `id, created_at, updated_at, title, slug, author, description, price_cents, published_year`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b             domain.Book
		createdAt     string
		updatedAt     string
		publishedYear sql.NullInt64
	)
	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&b.Slug,
		&b.Author,
		&b.Description,
		&b.PriceCents,
		&publishedYear,
	)
	if err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	b.PublishedYear = int(publishedYear.Int64)
	b.CategoryIDs = []string{}
	return &b, nil
}

// CreateBook inserts a book with its category links in one transaction.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (`+bookColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID,
			formatTime(b.CreatedAt),
			formatTime(b.UpdatedAt),
			b.Title,
			b.Slug,
			b.Author,
			b.Description,
			b.PriceCents,
			nullInt64(int64(b.PublishedYear)),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		return replaceCategoryLinks(ctx, tx, bookCategoriesTable, bookOwnerCol, b.ID, b.CategoryIDs)
	})
}

// GetBook retrieves a book by id, including its category ids.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.attachBookCategories(ctx, []*domain.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooksByIDs returns the books that exist among ids, ordered by title.
// Unknown ids are skipped.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return []*domain.Book{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders(len(ids))+`)
		ORDER BY title COLLATE NOCASE, id`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	return s.collectBooks(ctx, rows)
}

// UpdateBook rewrites a book and replaces its category links.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE books SET
				updated_at = ?,
				title = ?,
				slug = ?,
				author = ?,
				description = ?,
				price_cents = ?,
				published_year = ?
			WHERE id = ?`,
			formatTime(b.UpdatedAt),
			b.Title,
			b.Slug,
			b.Author,
			b.Description,
			b.PriceCents,
			nullInt64(int64(b.PublishedYear)),
			b.ID,
		)
		if err != nil {
			return err
		}
		if err := expectOneRow(result); err != nil {
			return err
		}
		return replaceCategoryLinks(ctx, tx, bookCategoriesTable, bookOwnerCol, b.ID, b.CategoryIDs)
	})
}

// DeleteBook removes a book. Existing order items keep their snapshot.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// ListBooks returns books ordered by title, optionally limited to one category.
func (s *Store) ListBooks(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books`
	var args []any
	if filter.CategoryID != "" {
		query += ` WHERE id IN (SELECT book_id FROM book_categories WHERE category_id = ?)`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY title COLLATE NOCASE, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return s.collectBooks(ctx, rows)
}

// collectBooks drains rows, closes them, and then loads category links.
func (s *Store) collectBooks(ctx context.Context, rows *sql.Rows) ([]*domain.Book, error) {
	books, err := scanBooks(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachBookCategories(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

func scanBooks(rows *sql.Rows) ([]*domain.Book, error) {
	defer rows.Close()
	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *Store) attachBookCategories(ctx context.Context, books []*domain.Book) error {
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	links, err := loadCategoryLinks(ctx, s.db, bookCategoriesTable, bookOwnerCol, ids)
	if err != nil {
		return err
	}
	for _, b := range books {
		if cats, ok := links[b.ID]; ok {
			b.CategoryIDs = cats
		}
	}
	return nil
}
