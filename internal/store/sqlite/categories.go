package sqlite

import (
	"context"
	"strings"

	"github.com/bookreview/bookreview-server/internal/domain"
	"github.com/bookreview/bookreview-server/internal/store"
)

const categoryColumns = `id, created_at, updated_at, name, slug, description`

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c         domain.Category
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&c.ID, &createdAt, &updatedAt, &c.Name, &c.Slug, &c.Description); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a category.
// Returns store.ErrAlreadyExists if the name (case-insensitive) or slug is taken.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, created_at, updated_at, name, name_lower, slug, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		c.Name,
		strings.ToLower(c.Name),
		c.Slug,
		c.Description,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetCategory retrieves a category by id.
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// GetCategoryBySlug retrieves a category by slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	c, err := scanCategory(row)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// GetCategoriesByIDs returns the categories that exist among ids, ordered by name.
// Unknown ids are skipped.
func (s *Store) GetCategoriesByIDs(ctx context.Context, ids []string) ([]*domain.Category, error) {
	if len(ids) == 0 {
		return []*domain.Category{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id IN (`+placeholders(len(ids))+`) ORDER BY name COLLATE NOCASE`,
		stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Category, 0, len(ids))
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCategory rewrites a category's name, slug, and description.
func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET updated_at = ?, name = ?, name_lower = ?, slug = ?, description = ?
		WHERE id = ?`,
		formatTime(c.UpdatedAt),
		c.Name,
		strings.ToLower(c.Name),
		c.Slug,
		c.Description,
		c.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// DeleteCategory removes a category. Book and request links cascade.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// loadCategoryLinks returns owner id -> category ids from a join table.
// table and ownerCol are package constants, never user input.
func loadCategoryLinks(ctx context.Context, q querier, table, ownerCol string, ownerIDs []string) (map[string][]string, error) {
	links := make(map[string][]string, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return links, nil
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+ownerCol+`, category_id FROM `+table+
			` WHERE `+ownerCol+` IN (`+placeholders(len(ownerIDs))+`) ORDER BY `+ownerCol+`, category_id`,
		stringArgs(ownerIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ownerID, categoryID string
		if err := rows.Scan(&ownerID, &categoryID); err != nil {
			return nil, err
		}
		links[ownerID] = append(links[ownerID], categoryID)
	}
	return links, rows.Err()
}

// replaceCategoryLinks rewrites the join rows for one owner.
func replaceCategoryLinks(ctx context.Context, e execer, table, ownerCol, ownerID string, categoryIDs []string) error {
	if _, err := e.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+ownerCol+` = ?`, ownerID); err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		if _, err := e.ExecContext(ctx,
			`INSERT INTO `+table+` (`+ownerCol+`, category_id) VALUES (?, ?)`, ownerID, categoryID); err != nil {
			if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
				return store.ErrInvalidInput.WithDetails(map[string]string{"category_ids": "unknown category " + categoryID})
			}
			return err
		}
	}
	return nil
}
