package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

func TestCart_Add_Increments(t *testing.T) {
	cart := NewCart()

	_, err := cart.Add("42", 2)
	require.NoError(t, err)
	got, err := cart.Add("42", 3)
	require.NoError(t, err)

	assert.Equal(t, 5, got)
	assert.Equal(t, 5, cart.Items["42"])
}

func TestCart_Add_ZeroQuantityLeavesCartUnchanged(t *testing.T) {
	cart := NewCart()
	_, err := cart.Add("1", 1)
	require.NoError(t, err)

	for _, q := range []int{0, -3} {
		_, err := cart.Add("7", q)
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	}

	assert.Equal(t, map[string]int{"1": 1}, cart.Items)
}

func TestCart_Add_RejectsOverflow(t *testing.T) {
	cart := NewCart()
	_, err := cart.Add("1", MaxCartQuantity)
	require.NoError(t, err)

	_, err = cart.Add("1", 1)

	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Equal(t, MaxCartQuantity, cart.Quantity("1"))
}

func TestCart_Add_EmptyBookID(t *testing.T) {
	cart := NewCart()
	_, err := cart.Add("", 1)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.True(t, cart.IsEmpty())
}

func TestCart_Add_ZeroValueCart(t *testing.T) {
	var cart Cart
	_, err := cart.Add("1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Quantity("1"))
}

func TestCart_SetQuantity(t *testing.T) {
	cart := NewCart()
	_, _ = cart.Add("1", 4)

	require.NoError(t, cart.SetQuantity("1", 2))
	assert.Equal(t, 2, cart.Quantity("1"))

	assert.ErrorIs(t, cart.SetQuantity("1", 0), domainerrors.ErrValidation)
	assert.ErrorIs(t, cart.SetQuantity("2", 1), domainerrors.ErrValidation)
	assert.Equal(t, 2, cart.Quantity("1"))
}

func TestCart_Remove(t *testing.T) {
	cart := NewCart()
	_, _ = cart.Add("1", 1)
	_, _ = cart.Add("2", 1)

	require.NoError(t, cart.Remove("1"))
	assert.Equal(t, []string{"2"}, cart.BookIDs())

	assert.ErrorIs(t, cart.Remove("1"), domainerrors.ErrValidation)
	assert.ErrorIs(t, cart.Remove(""), domainerrors.ErrValidation)
}

func TestCart_ClearAndTotals(t *testing.T) {
	cart := NewCart()
	_, _ = cart.Add("b", 2)
	_, _ = cart.Add("a", 3)

	assert.Equal(t, []string{"a", "b"}, cart.BookIDs())
	assert.Equal(t, 2, cart.Len())
	assert.Equal(t, 5, cart.TotalQuantity())

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.TotalQuantity())
}

func TestCart_Clone(t *testing.T) {
	cart := NewCart()
	_, _ = cart.Add("1", 1)

	clone := cart.Clone()
	_, _ = clone.Add("1", 1)

	assert.Equal(t, 1, cart.Quantity("1"))
	assert.Equal(t, 2, clone.Quantity("1"))
}
