package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

const (
	requestCategoriesTable = "requested_book_categories"
	requestOwnerCol        = "request_id"
)

const requestColumns = `id, owner_id, title, description, status, requested_at, updated_at`

func scanRequest(scanner interface{ Scan(dest ...any) error }) (*domain.RequestedBook, error) {
	var (
		r           domain.RequestedBook
		status      string
		requestedAt string
		updatedAt   string
	)
	err := scanner.Scan(&r.ID, &r.OwnerID, &r.Title, &r.Description, &status, &requestedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if r.RequestedAt, err = parseTime(requestedAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	r.Status = domain.RequestStatus(status)
	r.CategoryIDs = []string{}
	return &r, nil
}

// CreateRequest inserts a requested book with its category links.
func (s *Store) CreateRequest(ctx context.Context, r *domain.RequestedBook) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO requested_books (`+requestColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID,
			r.OwnerID,
			r.Title,
			r.Description,
			string(r.Status),
			formatTime(r.RequestedAt),
			formatTime(r.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if err != nil {
			return err
		}
		return replaceCategoryLinks(ctx, tx, requestCategoriesTable, requestOwnerCol, r.ID, r.CategoryIDs)
	})
}

// GetRequest retrieves a requested book by id.
func (s *Store) GetRequest(ctx context.Context, id string) (*domain.RequestedBook, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requested_books WHERE id = ?`, id)
	r, err := scanRequest(row)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.attachRequestCategories(ctx, []*domain.RequestedBook{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateRequest writes title, description, status, and categories, guarded by
// the status the caller read. A row that moved on in the meantime yields
// store.ErrStatusChanged; a missing row yields store.ErrNotFound.
func (s *Store) UpdateRequest(ctx context.Context, r *domain.RequestedBook, expected domain.RequestStatus) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE requested_books SET
				title = ?,
				description = ?,
				status = ?,
				updated_at = ?
			WHERE id = ? AND status = ?`,
			r.Title,
			r.Description,
			string(r.Status),
			formatTime(r.UpdatedAt),
			r.ID,
			string(expected),
		)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM requested_books WHERE id = ?`, r.ID).Scan(&exists)
			if err != nil {
				return notFound(err)
			}
			return store.ErrStatusChanged
		}
		return replaceCategoryLinks(ctx, tx, requestCategoriesTable, requestOwnerCol, r.ID, r.CategoryIDs)
	})
}

// DeleteRequest removes a requested book.
func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM requested_books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// ListRequestsByOwner returns one user's requests, newest first.
func (s *Store) ListRequestsByOwner(ctx context.Context, ownerID string) ([]*domain.RequestedBook, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requested_books WHERE owner_id = ?
		ORDER BY requested_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	reqs, err := scanRequests(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachRequestCategories(ctx, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ListRequests returns requests across all users, newest first.
func (s *Store) ListRequests(ctx context.Context, filter store.RequestFilter, params store.PageParams) (*store.Page[*domain.RequestedBook], error) {
	params.Normalize()

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	where, args, err := keysetClause(where, args, params.Cursor, "requested_at")
	if err != nil {
		return nil, err
	}
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requested_books`+whereSQL(where)+
			` ORDER BY requested_at DESC, id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	reqs, err := scanRequests(rows)
	if err != nil {
		return nil, err
	}

	page := store.BuildPage(reqs, params.Limit, func(r *domain.RequestedBook) (time.Time, string) {
		return r.RequestedAt, r.ID
	})
	if err := s.attachRequestCategories(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

func scanRequests(rows *sql.Rows) ([]*domain.RequestedBook, error) {
	defer rows.Close()
	reqs := []*domain.RequestedBook{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

func (s *Store) attachRequestCategories(ctx context.Context, reqs []*domain.RequestedBook) error {
	ids := make([]string, len(reqs))
	for i, r := range reqs {
		ids[i] = r.ID
	}
	links, err := loadCategoryLinks(ctx, s.db, requestCategoriesTable, requestOwnerCol, ids)
	if err != nil {
		return err
	}
	for _, r := range reqs {
		if cats, ok := links[r.ID]; ok {
			r.CategoryIDs = cats
		}
	}
	return nil
}
