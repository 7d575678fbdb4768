package apps

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyFormat(t *testing.T) {
	key, err := GenerateKey(KeyBytes)
	require.NoError(t, err)

	// 16 bytes -> 22 chars of raw URL-safe base64, no padding.
	assert.Len(t, key, 22)
	assert.False(t, strings.ContainsAny(key, "+/="), "key must be URL-safe: %q", key)
}

func TestGenerateKeyUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		key, err := GenerateKey(KeyBytes)
		require.NoError(t, err)
		require.False(t, seen[key], "collision after %d keys", i)
		seen[key] = true
	}
}
