package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akshayde/account_management_app/internal/apperrors"
	"github.com/akshayde/account_management_app/internal/core/domain"
	portsrepo "github.com/akshayde/account_management_app/internal/core/ports/repositories"
	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
	"github.com/akshayde/account_management_app/internal/platform/config"
	"github.com/akshayde/account_management_app/internal/utils"
)

// tokenService implements the TokenSvcFacade for handling JWT access tokens
// and refresh tokens. Access tokens carry a jti so that logout, password
// reset and destroy can invalidate them before expiry through the revocation
// store.
type tokenService struct {
	cfg             *config.Config
	userService     portssvc.UserSvcFacade
	revocationStore portsrepo.TokenRevocationStore
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config, userService portssvc.UserSvcFacade, revocationStore portsrepo.TokenRevocationStore) portssvc.TokenSvcFacade {
	return &tokenService{
		cfg:             cfg,
		userService:     userService,
		revocationStore: revocationStore,
	}
}

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, expiryTime, nil
}

// ValidateAccessToken verifies the token signature and standard claims, then
// rejects the token if its jti was revoked.
func (s *tokenService) ValidateAccessToken(ctx context.Context, tokenString string) (*portssvc.AccessTokenClaims, error) {
	claims, err := utils.ParseAndValidateJWT(tokenString, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, apperrors.ErrUnauthorized
	}

	revoked, err := s.revocationStore.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrUnauthorized
	}

	return &portssvc.AccessTokenClaims{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// RevokeAccessToken invalidates the token until its natural expiry. Revoking
// an already-expired token is a no-op, which makes logout idempotent-safe.
func (s *tokenService) RevokeAccessToken(ctx context.Context, claims *portssvc.AccessTokenClaims) error {
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.revocationStore.RevokeToken(ctx, claims.TokenID, ttl)
}

// GenerateRefreshToken creates a new refresh token for the given user.
func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	// 32 bytes of entropy, delivered as a 64-character hex string.
	rawRefreshToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate secure random string for refresh token: %w", err)
	}

	expiryTime := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)

	return rawRefreshToken, expiryTime, nil
}

// ValidateAndParseRefreshToken validates a refresh token string and returns the associated user.
func (s *tokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	user, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to retrieve user for refresh token validation: %w", err)
	}

	if user.RefreshTokenHash == "" || user.RefreshTokenExpiryTime == nil {
		return nil, apperrors.ErrUnauthorized
	}
	if time.Now().After(*user.RefreshTokenExpiryTime) {
		return nil, apperrors.ErrRefreshTokenExpired
	}

	if !utils.CompareRefreshTokenHash(refreshTokenString, user.RefreshTokenHash) {
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}
