package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomKey(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-z]{9}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		key, err := RandomKey(9)
		require.NoError(t, err)
		assert.Regexp(t, pattern, key)
		seen[key] = struct{}{}
	}
	// 36^9 possible keys; 200 draws colliding means the source is broken
	assert.Len(t, seen, 200)
}
