package store

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// PageParams requests one page of a keyset-paginated list.
type PageParams struct {
	Limit  int    // Items per page (default 50, max 200)
	Cursor string // Opaque cursor from a previous page; empty for the first page
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// Normalize applies the default and maximum limits.
func (p *PageParams) Normalize() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
}

// Cursor is the position after which the next page starts. Lists are
// ordered newest first, ties broken by id descending.
type Cursor struct {
	At time.Time
	ID string
}

// EncodeCursor creates an opaque cursor from the last item of a page.
func EncodeCursor(at time.Time, id string) string {
	raw := at.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a cursor. ok is false for the empty cursor.
func DecodeCursor(cursor string) (c Cursor, ok bool, err error) {
	if cursor == "" {
		return Cursor{}, false, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, false, ErrInvalidInput.WithCause(fmt.Errorf("invalid cursor: %w", err))
	}
	at, id, found := strings.Cut(string(decoded), "|")
	if !found || id == "" {
		return Cursor{}, false, ErrInvalidInput.WithCause(fmt.Errorf("invalid cursor"))
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Cursor{}, false, ErrInvalidInput.WithCause(fmt.Errorf("invalid cursor time: %w", err))
	}
	return Cursor{At: t, ID: id}, true, nil
}

// BuildPage trims items fetched with limit+1 rows and computes the next cursor.
func BuildPage[T any](items []T, limit int, key func(T) (time.Time, string)) *Page[T] {
	page := &Page[T]{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true
		at, id := key(page.Items[limit-1])
		page.NextCursor = EncodeCursor(at, id)
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page
}
