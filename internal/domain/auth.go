package domain

import (
	"context"
	"time"
)

// TokenKind distinguishes access tokens from refresh tokens so one cannot stand in for the other.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenClaims is the minimal identity carried inside signed tokens.
// swagger:model TokenClaims
type TokenClaims struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	BirthDate string `json:"birthDate"`
}

// ClaimsFromUser builds the token claims for u.
func ClaimsFromUser(u *User) *TokenClaims {
	return &TokenClaims{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		BirthDate: u.BirthDate.UTC().Format(DateLayout),
	}
}

// TokenPair is returned by login and refresh.
// swagger:model TokenPair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

// TokenIssuer issues signed tokens (e.g. JWT) carrying the given claims.
type TokenIssuer interface {
	Issue(claims *TokenClaims, kind TokenKind, expiry time.Duration) (string, error)
}

// TokenVerifier checks signature, expiry and kind of a token and returns its claims.
type TokenVerifier interface {
	Verify(token string, kind TokenKind) (*TokenClaims, error)
}

// AuthService validates credentials and issues or refreshes tokens.
type AuthService interface {
	// Authenticate returns ErrInvalidCredentials both for unknown emails and wrong passwords.
	Authenticate(ctx context.Context, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	IssueTokens(user *User) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}
