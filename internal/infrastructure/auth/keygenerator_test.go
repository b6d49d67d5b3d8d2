package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyGenerator_Generate(t *testing.T) {
	g := NewKeyGenerator()

	key, err := g.Generate()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "pk_"))
	assert.Len(t, key, 3+64)

	other, err := g.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestKeyGenerator_Hash(t *testing.T) {
	g := NewKeyGenerator()

	digest := g.Hash("pk_example")
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, g.Hash("pk_example"))
	assert.NotEqual(t, digest, g.Hash("pk_other"))
}
