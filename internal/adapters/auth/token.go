package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"passin/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Type      domain.TokenKind `json:"typ"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Email     string           `json:"email"`
	BirthDate string           `json:"birthDate"`
}

// JWT signs and verifies HS256 tokens with a shared secret.
type JWT struct {
	secret []byte
	now    func() time.Time
}

// NewJWT returns a JWT issuer/verifier using the given secret.
func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

var (
	_ domain.TokenIssuer   = (*JWT)(nil)
	_ domain.TokenVerifier = (*JWT)(nil)
)

func (j *JWT) Issue(claims *domain.TokenClaims, kind domain.TokenKind, expiry time.Duration) (string, error) {
	now := j.now()
	c := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Type:      kind,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Email:     claims.Email,
		BirthDate: claims.BirthDate,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature, algorithm, expiry and token kind. Any failure yields domain.ErrInvalidToken.
func (j *JWT) Verify(tokenString string, kind domain.TokenKind) (*domain.TokenClaims, error) {
	var c jwtClaims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidToken, err)
	}
	if c.Type != kind || c.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return &domain.TokenClaims{
		ID:        c.Subject,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		BirthDate: c.BirthDate,
	}, nil
}
