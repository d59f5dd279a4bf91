package domain

// Category groups books and requested books.
type Category struct {
	Entity
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}
