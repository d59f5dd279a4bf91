// Package service holds the bookstore's business operations. Handlers call
// services; services own validation, persistence and side effects such as
// search indexing, metrics and logging.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
	"github.com/bookreview/bookreview-server/internal/store"
)

// clock returns the current time. Tests replace it to pin timestamps.
type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// checkCategories verifies every id in ids names an existing category.
// Unknown ids are reported in the error details.
func checkCategories(ctx context.Context, st store.Store, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := st.GetCategoriesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(found))
	for _, c := range found {
		known[c.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return domainerrors.ValidationWithDetails("unknown categories", map[string][]string{"category_ids": missing})
	}
	return nil
}

// statusConflict turns a lost compare-and-set into an InvalidState error.
func statusConflict(err error, what string) error {
	if errors.Is(err, store.ErrStatusChanged) {
		return domainerrors.InvalidStatef("%s was modified concurrently, reload and retry", what).WithCause(err)
	}
	return err
}

// isNotFound reports whether err carries the not-found code.
func isNotFound(err error) bool {
	return errors.Is(err, domainerrors.ErrNotFound)
}

// resolveCartBooks loads the books named by cart, silently skipping ids
// that no longer exist. Results are ordered by title.
func resolveCartBooks(ctx context.Context, st store.Store, cart *domain.Cart) ([]*domain.Book, error) {
	if cart == nil || cart.IsEmpty() {
		return []*domain.Book{}, nil
	}
	books, err := st.GetBooksByIDs(ctx, cart.BookIDs())
	if err != nil {
		return nil, err
	}
	return books, nil
}
