package domain

import "slices"

// Book is a purchasable title in the catalog.
type Book struct {
	Entity
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Author        string   `json:"author"`
	Description   string   `json:"description"` // Markdown
	PriceCents    int64    `json:"price_cents"`
	PublishedYear int      `json:"published_year,omitempty"`
	CategoryIDs   []string `json:"category_ids"`
}

// InCategory reports whether the book is filed under categoryID.
func (b *Book) InCategory(categoryID string) bool {
	return slices.Contains(b.CategoryIDs, categoryID)
}
