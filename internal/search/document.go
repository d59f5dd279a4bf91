// Package search provides full-text book search backed by Bleve.
// Titles, authors and descriptions are searchable; category ids are
// indexed as keywords so results can be narrowed to one category.
package search

import (
	"strings"
	"time"

	"github.com/bookreview/bookreview-server/internal/domain"
)

// BookDocument is the indexed form of a catalog book.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description,omitempty"`
	CategoryIDs []string `json:"category_ids,omitempty"`
	PriceCents  int64    `json:"price_cents"`
	CreatedAt   int64    `json:"created_at"` // unix nanoseconds
}

// NewBookDocument builds the index document for b.
func NewBookDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		CategoryIDs: b.CategoryIDs,
		PriceCents:  b.PriceCents,
		CreatedAt:   b.CreatedAt.UnixNano(),
	}
}

// ToMap converts the document so Bleve sees the mapped field names.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"title":       d.Title,
		"title_sort":  strings.ToLower(d.Title),
		"author":      d.Author,
		"price_cents": float64(d.PriceCents),
		"created_at":  float64(d.CreatedAt),
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.CategoryIDs) > 0 {
		m["category_ids"] = d.CategoryIDs
	}
	return m
}

// CreatedTime returns the creation time stored in the document.
func (d *BookDocument) CreatedTime() time.Time {
	return time.Unix(0, d.CreatedAt).UTC()
}
