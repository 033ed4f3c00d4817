package economy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_newKey_Format(t *testing.T) {
	key, err := newKey()
	require.NoError(t, err)

	parts := strings.Split(key, "-")
	require.Len(t, parts, keySegments+1)
	assert.Equal(t, keyPrefix, parts[0])

	for _, segment := range parts[1:] {
		assert.Len(t, segment, keySegmentLen)
		for _, r := range segment {
			assert.Contains(t, keyAlphabet, string(r))
		}
	}
}

func Test_newKey_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for i := 0; i < 256; i++ {
		key, err := newKey()
		require.NoError(t, err)
		if _, ok := seen[key]; ok {
			t.Fatalf("duplicate key generated: %s", key)
		}
		seen[key] = struct{}{}
	}
}
