package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passin/internal/domain"
)

func testClaims() *domain.TokenClaims {
	return &domain.TokenClaims{
		ID:        "user-123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		BirthDate: "1990-12-10",
	}
}

func TestJWT_Issue(t *testing.T) {
	secret := "test-secret"
	j := NewJWT(secret)

	token, err := j.Issue(testClaims(), domain.AccessToken, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, domain.AccessToken, claims.Type)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "1990-12-10", claims.BirthDate)
}

func TestJWT_Verify_round_trip(t *testing.T) {
	j := NewJWT("test-secret")
	for _, kind := range []domain.TokenKind{domain.AccessToken, domain.RefreshToken} {
		token, err := j.Issue(testClaims(), kind, time.Hour)
		require.NoError(t, err)

		got, err := j.Verify(token, kind)
		require.NoError(t, err)
		assert.Equal(t, testClaims(), got)
	}
}

func TestJWT_Verify_rejects(t *testing.T) {
	j := NewJWT("test-secret")
	access, err := j.Issue(testClaims(), domain.AccessToken, time.Hour)
	require.NoError(t, err)
	expired, err := j.Issue(testClaims(), domain.RefreshToken, -time.Minute)
	require.NoError(t, err)
	foreign, err := NewJWT("other-secret").Issue(testClaims(), domain.RefreshToken, time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Type: domain.RefreshToken,
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"access token used as refresh", access},
		{"expired", expired},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"garbage", "not-a-jwt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := j.Verify(tt.token, domain.RefreshToken)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, domain.ErrInvalidToken))
		})
	}
}

func TestJWT_Verify_fixed_clock(t *testing.T) {
	j := NewJWT("test-secret")
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return issued }
	token, err := j.Issue(testClaims(), domain.AccessToken, time.Hour)
	require.NoError(t, err)

	j.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = j.Verify(token, domain.AccessToken)
	require.NoError(t, err)

	j.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = j.Verify(token, domain.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
