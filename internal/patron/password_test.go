// internal/patron/password_test.go
package patron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, salt, err := hashPassword("SecurePass123!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := verifyPassword("SecurePass123!", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("wrong-password", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashIsSalted(t *testing.T) {
	hash1, salt1, err := hashPassword("same-password")
	require.NoError(t, err)
	hash2, salt2, err := hashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestVerifyPassword_BadEncoding(t *testing.T) {
	_, err := verifyPassword("password", "not-base64!!", "also-not-base64!!")
	assert.Error(t, err)
}
