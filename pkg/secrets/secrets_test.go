package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "chainid/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	token, err := Generate()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	hash, err := Hash(token)
	require.NoError(t, err)
	assert.NotEqual(t, token, hash)

	t.Run("matching secret verifies", func(t *testing.T) {
		assert.NoError(t, Verify(token, hash))
	})

	t.Run("wrong secret is unauthorized", func(t *testing.T) {
		err := Verify("wrong", hash)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("malformed hash is internal", func(t *testing.T) {
		err := Verify(token, "not-a-hash")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestHashValidation(t *testing.T) {
	_, err := Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = Hash(strings.Repeat("x", 100))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
