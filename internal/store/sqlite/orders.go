package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

const orderColumns = `id, user_id, status, total_cents, created_at, updated_at`

func scanOrder(scanner interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var (
		o         domain.Order
		status    string
		createdAt string
		updatedAt string
	)
	err := scanner.Scan(&o.ID, &o.UserID, &status, &o.TotalCents, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.Items = []domain.OrderItem{}
	return &o, nil
}

// CreateOrder inserts an order and all of its items atomically.
func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID,
			o.UserID,
			string(o.Status),
			o.TotalCents,
			formatTime(o.CreatedAt),
			formatTime(o.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if err != nil {
			return err
		}

		for i, item := range o.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, position, book_id, title, quantity, unit_price_cents)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				item.ID,
				o.ID,
				i,
				item.BookID,
				item.Title,
				item.Quantity,
				item.UnitPriceCents,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOrder retrieves an order with its items.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.attachOrderItems(ctx, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateOrderStatus moves an order from expected to next.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, expected, next domain.OrderStatus, now time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			string(next), formatTime(now), id, string(expected))
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&exists); err != nil {
			return notFound(err)
		}
		return store.ErrStatusChanged
	})
}

// DeleteOrder removes an order and its items.
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// ListOrdersByUser returns one user's orders, newest first.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachOrderItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders returns orders across all users, newest first.
func (s *Store) ListOrders(ctx context.Context, filter store.OrderFilter, params store.PageParams) (*store.Page[*domain.Order], error) {
	params.Normalize()

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	where, args, err := keysetClause(where, args, params.Cursor, "created_at")
	if err != nil {
		return nil, err
	}
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders`+whereSQL(where)+
			` ORDER BY created_at DESC, id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	page := store.BuildPage(orders, params.Limit, func(o *domain.Order) (time.Time, string) {
		return o.CreatedAt, o.ID
	})
	if err := s.attachOrderItems(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

func scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	defer rows.Close()
	orders := []*domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *Store) attachOrderItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		byID[o.ID] = o
		ids[i] = o.ID
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, id, book_id, title, quantity, unit_price_cents
		FROM order_items WHERE order_id IN (`+placeholders(len(ids))+`)
		ORDER BY order_id, position`, stringArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    domain.OrderItem
		)
		if err := rows.Scan(&orderID, &item.ID, &item.BookID, &item.Title, &item.Quantity, &item.UnitPriceCents); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

// Counts summarizes row counts for the admin dashboard.
func (s *Store) Counts(ctx context.Context) (*store.Counts, error) {
	var c store.Counts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM books),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM requested_books WHERE status = 'PENDING'),
			(SELECT COUNT(*) FROM requested_books),
			(SELECT COUNT(*) FROM orders)`).
		Scan(&c.Users, &c.Books, &c.Categories, &c.PendingRequests, &c.Requests, &c.Orders)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountUserActivity returns how many requests and orders a user has.
func (s *Store) CountUserActivity(ctx context.Context, userID string) (requests, orders int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM requested_books WHERE owner_id = ?),
			(SELECT COUNT(*) FROM orders WHERE user_id = ?)`, userID, userID).
		Scan(&requests, &orders)
	return requests, orders, err
}
