package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDestination(t *testing.T) {
	t.Run("passes clean input", func(t *testing.T) {
		got, err := sanitizeDestination("Tokyo")
		require.NoError(t, err)
		assert.Equal(t, "Tokyo", got)
	})

	t.Run("strips dangerous characters", func(t *testing.T) {
		got, err := sanitizeDestination(`Kyoto"; DROP TABLE sessions`)
		require.NoError(t, err)
		assert.Equal(t, "Kyoto DROP TABLE sessions", got)
	})

	t.Run("strips quotes and trims", func(t *testing.T) {
		got, err := sanitizeDestination("  Cote d'Azur  ")
		require.NoError(t, err)
		assert.Equal(t, "Cote dAzur", got)
	})

	t.Run("strips full-width look-alikes", func(t *testing.T) {
		// NFKD maps ＜ and ＞ onto their ASCII forms before stripping.
		got, err := sanitizeDestination("＜Paris＞")
		require.NoError(t, err)
		assert.Equal(t, "Paris", got)
	})

	t.Run("rejects markup remnants", func(t *testing.T) {
		_, err := sanitizeDestination("<script>alert('x')</script>")
		assert.Error(t, err)
	})

	t.Run("rejects empty after cleaning", func(t *testing.T) {
		for _, raw := range []string{"", "   ", `<>&;`} {
			_, err := sanitizeDestination(raw)
			assert.Error(t, err, "input %q", raw)
		}
	})

	t.Run("rejects over-long input", func(t *testing.T) {
		_, err := sanitizeDestination(strings.Repeat("a", maxDestinationLen+1))
		assert.Error(t, err)
	})
}

func TestValidateIdentifier(t *testing.T) {
	for _, id := range []string{"user-1", "sess_abc-123", "ABC"} {
		got, err := validateIdentifier("userId", id)
		require.NoError(t, err, "id %q", id)
		assert.Equal(t, id, got)
	}

	for _, id := range []string{"", "  ", "bad user", "user;1", "user/1", "user's"} {
		_, err := validateIdentifier("userId", id)
		assert.Error(t, err, "id %q", id)
	}
}
