package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("sneakers42")
	require.NoError(t, err)
	assert.NotEqual(t, "sneakers42", h)

	assert.True(t, CheckPassword(h, "sneakers42"))
	assert.False(t, CheckPassword(h, "sneakers43"))
	assert.False(t, CheckPassword("not-a-hash", "sneakers42"))
}
