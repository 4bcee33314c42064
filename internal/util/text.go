package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKD normalization so visually identical strings
// compare equal regardless of their Unicode composition.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}

// Fold normalizes and lower-cases s for case-insensitive matching.
func Fold(s string) string {
	return strings.ToLower(norm.NFKD.String(s))
}
