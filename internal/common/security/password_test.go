package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	assert.True(t, CheckPasswordHash("secret1", hash))
	assert.False(t, CheckPasswordHash("secret2", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCheckPasswordHash_GarbageHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("x", "not-a-bcrypt-hash"))
}

func TestBurnPasswordCheck(t *testing.T) {
	assert.NotEmpty(t, dummyHash)
	BurnPasswordCheck("anything")
}
