package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("hashes and verifies", func(t *testing.T) {
		hash, err := HashPassword("a-long-password", 4)
		require.NoError(t, err)
		assert.NotEqual(t, "a-long-password", hash)
		assert.NoError(t, CheckPassword("a-long-password", hash))
		assert.ErrorIs(t, CheckPassword("another-password", hash), ErrInvalidPassword)
	})

	t.Run("enforces the minimum length", func(t *testing.T) {
		_, err := HashPassword("short", 4)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("enforces the bcrypt byte limit", func(t *testing.T) {
		long := make([]byte, 80)
		for i := range long {
			long[i] = 'a'
		}
		_, err := HashPassword(string(long), 4)
		assert.ErrorIs(t, err, ErrPasswordTooLong)
	})
}

func TestGenerateTemporaryPassword(t *testing.T) {
	password, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(password), MinPasswordLength)

	other, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	assert.NotEqual(t, password, other)
}

func TestGenerateSessionSecret(t *testing.T) {
	secret, err := GenerateSessionSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 64) // 32 bytes hex-encoded
}
