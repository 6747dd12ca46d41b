package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hexRe := regexp.MustCompile(`^[0-9a-f]{64}$`)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, hexRe, salt, "salt should be 64 hex characters")
		assert.False(t, seen[salt], "salts should not repeat")
		seen[salt] = true
	}
}

func TestBcryptHasher_Hash_and_Compare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	hash, err := h.Hash(salt, "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "s3cret-pass")

	require.NoError(t, h.Compare(hash, salt, "s3cret-pass"))
}

func TestBcryptHasher_Compare_mismatch(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	salt1, err := h.GenerateSalt()
	require.NoError(t, err)
	salt2, err := h.GenerateSalt()
	require.NoError(t, err)
	hash, err := h.Hash(salt1, "correct")
	require.NoError(t, err)

	tests := []struct {
		name     string
		salt     string
		password string
	}{
		{"wrong password", salt1, "wrong"},
		{"wrong salt", salt2, "correct"},
		{"empty password", salt1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, h.Compare(hash, tt.salt, tt.password))
		})
	}
}

func TestBcryptHasher_long_password(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	long := strings.Repeat("a", 200)
	hash, err := h.Hash("salt", long)
	require.NoError(t, err)
	require.NoError(t, h.Compare(hash, "salt", long))
	assert.Error(t, h.Compare(hash, "salt", long[:199]))
}
