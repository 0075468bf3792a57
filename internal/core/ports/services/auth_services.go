package services

import (
	"context"
	"time"

	"github.com/akshayde/account_management_app/internal/core/domain"
)

// AccessTokenClaims is the validated identity carried by an access token.
type AccessTokenClaims struct {
	UserID    string
	TokenID   string // jti, used for revocation
	ExpiresAt time.Time
}

// TokenSvcFacade issues, validates and revokes session tokens.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a new JWT access token for the given user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAccessToken verifies the token signature and standard claims
	// and rejects tokens that have been revoked.
	ValidateAccessToken(ctx context.Context, tokenString string) (*AccessTokenClaims, error)

	// RevokeAccessToken invalidates the token until its natural expiry.
	// Revoking an already-invalid token is not an error.
	RevokeAccessToken(ctx context.Context, claims *AccessTokenClaims) error

	// GenerateRefreshToken creates a new opaque refresh token and its expiry.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAndParseRefreshToken validates a refresh token string and
	// returns the associated user.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error)
}
