package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCheckPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		want     error
	}{
		{"short1", ErrPasswordTooShort},
		{"alllettersnodigit", ErrPasswordComposition},
		{"12345678", ErrPasswordComposition},
		{"Valid123!", ErrPasswordComposition},
		{"Valid1234", nil},
		{"abcdefg1", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CheckPasswordStrength(tc.password), tc.password)
	}
}

func TestHashPasswordEnforcesPolicy(t *testing.T) {
	_, err := HashPassword("short1")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashPasswordAndVerify(t *testing.T) {
	HashCost = bcrypt.MinCost
	t.Cleanup(func() { HashCost = bcrypt.DefaultCost })

	hash, err := HashPassword("Valid1234")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("Valid1234", hash))
	assert.False(t, VerifyPassword("Wrong1234", hash))
	assert.False(t, VerifyPassword("Valid1234", "$2a$10$bad"))
}
