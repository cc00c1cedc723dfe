package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPasswordConfig(t *testing.T, pepper string) *PasswordConfig {
	t.Helper()
	cfg := Defaults()
	cfg.BcryptCost = MinBcryptCost
	cfg.PasswordPepper = pepper
	pw, err := cfg.Password()
	require.NoError(t, err)
	return pw
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	pw := testPasswordConfig(t, "")

	hash, err := pw.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, pw.VerifyPassword("correct horse", hash))
	assert.False(t, pw.VerifyPassword("wrong horse", hash))
	assert.False(t, pw.VerifyPassword("correct horse", ""))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := testPasswordConfig(t, "pepper")
	plain := testPasswordConfig(t, "")

	hash, err := peppered.HashPassword("secret")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("secret", hash))
	assert.False(t, plain.VerifyPassword("secret", hash))
}

func TestConfig_Password_CostRange(t *testing.T) {
	for _, cost := range []int{MinBcryptCost - 1, MaxBcryptCost + 1} {
		cfg := Defaults()
		cfg.BcryptCost = cost
		_, err := cfg.Password()
		assert.Error(t, err)
	}
}
