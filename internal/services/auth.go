package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"passin/internal/domain"
)

const tokenTypeBearer = "Bearer"

type authService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	verifier       domain.TokenVerifier
	accessTTL      time.Duration
	refreshTTL     time.Duration
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService with the given repository, hasher and token ports.
func NewAuthService(
	userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	verifier domain.TokenVerifier,
	accessTTL, refreshTTL time.Duration,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		issuer:         issuer,
		verifier:       verifier,
		accessTTL:      accessTTL,
		refreshTTL:     refreshTTL,
		contextTimeout: timeout,
	}
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.IssueTokens(user)
}

func (s *authService) IssueTokens(user *domain.User) (*domain.TokenPair, error) {
	return s.issuePair(domain.ClaimsFromUser(user))
}

// Refresh trusts the refresh token's claims only after signature, expiry and kind are verified,
// and refuses to refresh for users that no longer exist.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	claims, err := s.verifier.Verify(refreshToken, domain.RefreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if _, err := s.userRepo.GetByID(ctx, claims.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.issuePair(claims)
}

func (s *authService) issuePair(claims *domain.TokenClaims) (*domain.TokenPair, error) {
	access, err := s.issuer.Issue(claims, domain.AccessToken, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.issuer.Issue(claims, domain.RefreshToken, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: tokenTypeBearer}, nil
}
