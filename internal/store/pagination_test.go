package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookreview/bookreview-server/internal/errors"
)

func TestPageParams_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"valid", 20, 20},
		{"zero uses default", 0, 50},
		{"negative uses default", -3, 50},
		{"capped", 5000, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PageParams{Limit: tt.limit}
			p.Normalize()
			assert.Equal(t, tt.want, p.Limit)
		})
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 30, 0, 123, time.UTC)

	c, ok, err := DecodeCursor(EncodeCursor(at, "req-1"))
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, at.Equal(c.At))
	assert.Equal(t, "req-1", c.ID)
}

func TestDecodeCursor_EmptyAndInvalid(t *testing.T) {
	_, ok, err := DecodeCursor("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = DecodeCursor("!!not-base64!!")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, _, err = DecodeCursor(EncodeCursor(time.Now(), "")[:4])
	assert.Error(t, err)
}

func TestBuildPage(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	type row struct {
		id string
		at time.Time
	}
	rows := []row{{"c", base.Add(3 * time.Hour)}, {"b", base.Add(2 * time.Hour)}, {"a", base.Add(time.Hour)}}
	key := func(r row) (time.Time, string) { return r.at, r.id }

	page := BuildPage(rows, 2, key)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	c, ok, err := DecodeCursor(page.NextCursor)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", c.ID)

	last := BuildPage(rows[:1], 2, key)
	assert.False(t, last.HasMore)
	assert.Empty(t, last.NextCursor)

	empty := BuildPage[row](nil, 2, key)
	assert.NotNil(t, empty.Items)
}
