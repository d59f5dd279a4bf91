// Package id generates prefixed entity identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used for the bookstore entities.
const (
	PrefixUser      = "usr"
	PrefixSession   = "ses"
	PrefixToken     = "tok"
	PrefixCategory  = "cat"
	PrefixBook      = "book"
	PrefixRequest   = "req"
	PrefixOrder     = "ord"
	PrefixOrderItem = "itm"
)

// Generate returns prefix + "-" + a 21 character NanoID, e.g. "req-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system entropy source fails.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}
