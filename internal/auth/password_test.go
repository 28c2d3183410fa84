package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_HashPassword(t *testing.T) {
	hasher := NewHasher()

	hash, err := hasher.HashPassword("p@ssw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "p@ssw0rd!", hash)
	assert.GreaterOrEqual(t, len(hash), 60, "bcrypt hash should be at least 60 chars")
}

func TestHasher_HashPassword_TooShort(t *testing.T) {
	hasher := NewHasher()

	for _, password := range []string{"", "a", "1234567", "       "} {
		hash, err := hasher.HashPassword(password)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		assert.Empty(t, hash)
	}
}

func TestHasher_HashPassword_SaltedPerCall(t *testing.T) {
	hasher := NewHasher()

	hash1, err := hasher.HashPassword("testpassword123")
	require.NoError(t, err)
	hash2, err := hasher.HashPassword("testpassword123")
	require.NoError(t, err)

	// bcrypt generates different hashes due to random salt
	assert.NotEqual(t, hash1, hash2)
}

func TestHasher_CheckPassword(t *testing.T) {
	hasher := NewHasher()

	hash, err := hasher.HashPassword("correctpassword")
	require.NoError(t, err)

	assert.True(t, hasher.CheckPassword("correctpassword", hash))
	assert.False(t, hasher.CheckPassword("wrongpassword", hash))
	assert.False(t, hasher.CheckPassword("", hash))
	assert.False(t, hasher.CheckPassword("correctpassword", "invalid-hash"))
	assert.False(t, hasher.CheckPassword("correctpassword", ""))
}

func TestHasher_CheckPassword_CaseSensitive(t *testing.T) {
	hasher := NewHasher()

	hash, err := hasher.HashPassword("Password123")
	require.NoError(t, err)

	assert.True(t, hasher.CheckPassword("Password123", hash))
	assert.False(t, hasher.CheckPassword("password123", hash))
	assert.False(t, hasher.CheckPassword("PASSWORD123", hash))
}
