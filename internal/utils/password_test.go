package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3creta", 4) // low cost keeps the test fast
	require.NoError(t, err)
	assert.NotEqual(t, "s3creta", hash)

	assert.True(t, VerifyPassword(hash, "s3creta"))
	assert.False(t, VerifyPassword(hash, "incorrecta"))
	assert.False(t, VerifyPassword("no-es-un-hash", "s3creta"))
}

func TestHashPasswordZeroCostFallsBack(t *testing.T) {
	hash, err := HashPassword("s3creta", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
	assert.True(t, VerifyPassword(hash, "s3creta"))
}
