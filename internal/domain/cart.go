package domain

import (
	"maps"
	"slices"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

// MaxCartQuantity bounds a single line so totals cannot overflow.
const MaxCartQuantity = 999

// Cart maps book IDs to requested quantities. Every quantity is >= 1.
// The zero value is not usable; call NewCart.
type Cart struct {
	Items map[string]int `json:"items"`
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Items: make(map[string]int)}
}

// ValidateQuantity rejects quantities below one or above MaxCartQuantity.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return domainerrors.Validation("quantity must be at least 1")
	}
	if quantity > MaxCartQuantity {
		return domainerrors.Validationf("quantity must not exceed %d", MaxCartQuantity)
	}
	return nil
}

func validateBookID(bookID string) error {
	if bookID == "" {
		return domainerrors.Validation("book id is required")
	}
	return nil
}

// Add increments the quantity for bookID, inserting it when absent.
// On error the cart is unchanged. Returns the new quantity.
func (c *Cart) Add(bookID string, quantity int) (int, error) {
	if err := validateBookID(bookID); err != nil {
		return 0, err
	}
	if err := ValidateQuantity(quantity); err != nil {
		return 0, err
	}
	if c.Items == nil {
		c.Items = make(map[string]int)
	}

	next := c.Items[bookID] + quantity
	if next > MaxCartQuantity {
		return 0, domainerrors.Validationf("quantity must not exceed %d", MaxCartQuantity)
	}
	c.Items[bookID] = next
	return next, nil
}

// SetQuantity replaces the quantity of a book already in the cart.
func (c *Cart) SetQuantity(bookID string, quantity int) error {
	if err := validateBookID(bookID); err != nil {
		return err
	}
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	if !c.Contains(bookID) {
		return domainerrors.Validation("book is not in the cart")
	}
	c.Items[bookID] = quantity
	return nil
}

// Remove deletes bookID from the cart.
func (c *Cart) Remove(bookID string) error {
	if err := validateBookID(bookID); err != nil {
		return err
	}
	if !c.Contains(bookID) {
		return domainerrors.Validation("book is not in the cart")
	}
	delete(c.Items, bookID)
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = make(map[string]int)
}

// Contains reports whether bookID has a line in the cart.
func (c *Cart) Contains(bookID string) bool {
	_, ok := c.Items[bookID]
	return ok
}

// Quantity returns the quantity for bookID, or zero.
func (c *Cart) Quantity(bookID string) int {
	return c.Items[bookID]
}

// BookIDs returns the cart keys in sorted order.
func (c *Cart) BookIDs() []string {
	return slices.Sorted(maps.Keys(c.Items))
}

// Len returns the number of distinct books.
func (c *Cart) Len() int {
	return len(c.Items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity sums the quantities of every line.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, q := range c.Items {
		total += q
	}
	return total
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	out := NewCart()
	maps.Copy(out.Items, c.Items)
	return out
}
