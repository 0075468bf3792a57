package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/akshayde/account_management_app/internal/apperrors"
	"github.com/akshayde/account_management_app/internal/core/domain"
	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
	"github.com/akshayde/account_management_app/internal/core/services"
	"github.com/akshayde/account_management_app/internal/platform/config"
	"github.com/akshayde/account_management_app/internal/utils"
)

// fakeRevocationStore is an in-memory TokenRevocationStore.
type fakeRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *fakeRevocationStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (s *fakeRevocationStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return time.Now().Before(expiry), nil
}

// --- Test Suite ---
type TokenServiceTestSuite struct {
	suite.Suite
	cfg             *config.Config
	mockUserRepo    *MockUserRepository
	revocationStore *fakeRevocationStore
	tokenService    portssvc.TokenSvcFacade
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.cfg = &config.Config{
		JWTSecret:                  "test-secret-key-for-token-tests",
		JWTExpiryDuration:          time.Hour,
		JWTIssuer:                  "account-management-app-test",
		RefreshTokenExpiryDuration: 24 * time.Hour,
	}
	suite.mockUserRepo = new(MockUserRepository)
	suite.revocationStore = newFakeRevocationStore()
	userService := services.NewUserService(suite.mockUserRepo, new(MockFileStore), NewMockNotifier())
	suite.tokenService = services.NewTokenService(suite.cfg, userService, suite.revocationStore)
}

func (suite *TokenServiceTestSuite) TestGenerateAndValidateAccessToken() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString()}

	token, expiry, err := suite.tokenService.GenerateAccessToken(ctx, user)
	suite.Require().NoError(err)
	suite.NotEmpty(token)
	suite.WithinDuration(time.Now().Add(suite.cfg.JWTExpiryDuration), expiry, 5*time.Second)

	claims, err := suite.tokenService.ValidateAccessToken(ctx, token)
	suite.Require().NoError(err)
	suite.Equal(user.UserID, claims.UserID)
	suite.NotEmpty(claims.TokenID)
	suite.WithinDuration(expiry, claims.ExpiresAt, 5*time.Second)
}

func (suite *TokenServiceTestSuite) TestValidateAccessToken_WrongSecret() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString()}

	otherCfg := *suite.cfg
	otherCfg.JWTSecret = "a-completely-different-secret"
	otherService := services.NewTokenService(&otherCfg, nil, suite.revocationStore)

	token, _, err := otherService.GenerateAccessToken(ctx, user)
	suite.Require().NoError(err)

	claims, err := suite.tokenService.ValidateAccessToken(ctx, token)
	suite.Require().Error(err)
	suite.Nil(claims)
}

func (suite *TokenServiceTestSuite) TestRevokedTokenIsRejected() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString()}

	token, _, err := suite.tokenService.GenerateAccessToken(ctx, user)
	suite.Require().NoError(err)

	claims, err := suite.tokenService.ValidateAccessToken(ctx, token)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.tokenService.RevokeAccessToken(ctx, claims))

	_, err = suite.tokenService.ValidateAccessToken(ctx, token)
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *TokenServiceTestSuite) TestRevokeExpiredTokenIsNoOp() {
	ctx := context.Background()
	claims := &portssvc.AccessTokenClaims{
		UserID:    uuid.NewString(),
		TokenID:   uuid.NewString(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	suite.Require().NoError(suite.tokenService.RevokeAccessToken(ctx, claims))

	revoked, err := suite.revocationStore.IsTokenRevoked(ctx, claims.TokenID)
	suite.Require().NoError(err)
	suite.False(revoked)
}

func (suite *TokenServiceTestSuite) TestRefreshTokenRoundtrip() {
	ctx := context.Background()
	userID := uuid.NewString()
	user := &domain.User{UserID: userID}

	rawToken, expiry, err := suite.tokenService.GenerateRefreshToken(ctx, user)
	suite.Require().NoError(err)
	suite.Len(rawToken, 64) // 32 bytes hex-encoded
	suite.True(expiry.After(time.Now()))

	stored := &domain.User{
		UserID:                 userID,
		RefreshTokenHash:       utils.HashRefreshToken(rawToken),
		RefreshTokenExpiryTime: &expiry,
	}
	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(stored, nil)

	got, err := suite.tokenService.ValidateAndParseRefreshToken(ctx, userID, rawToken)
	suite.Require().NoError(err)
	suite.Equal(userID, got.UserID)

	_, err = suite.tokenService.ValidateAndParseRefreshToken(ctx, userID, "not-the-token")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *TokenServiceTestSuite) TestRefreshToken_Expired() {
	ctx := context.Background()
	userID := uuid.NewString()
	expired := time.Now().Add(-time.Minute)
	stored := &domain.User{
		UserID:                 userID,
		RefreshTokenHash:       utils.HashRefreshToken("some-token"),
		RefreshTokenExpiryTime: &expired,
	}
	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(stored, nil)

	_, err := suite.tokenService.ValidateAndParseRefreshToken(ctx, userID, "some-token")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRefreshTokenExpired)
}

func (suite *TokenServiceTestSuite) TestRefreshToken_UnknownUser() {
	ctx := context.Background()
	userID := uuid.NewString()
	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(nil, apperrors.ErrNotFound)

	_, err := suite.tokenService.ValidateAndParseRefreshToken(ctx, userID, "whatever")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}
