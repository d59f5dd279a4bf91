package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Prefix(t *testing.T) {
	got, err := Generate(PrefixRequest)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "req-"))
	assert.Len(t, got, len("req-")+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 500 {
		v := MustGenerate(PrefixBook)
		assert.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
	}
}
