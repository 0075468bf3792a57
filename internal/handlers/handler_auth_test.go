package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/akshayde/account_management_app/internal/apperrors"
	"github.com/akshayde/account_management_app/internal/core/domain"
	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
	"github.com/akshayde/account_management_app/internal/dto"
	"github.com/akshayde/account_management_app/internal/handlers"
	"github.com/akshayde/account_management_app/internal/platform/config"
)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest, avatar *portssvc.AvatarUpload) (*domain.User, error) {
	args := m.Called(ctx, req, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ResetPassword(ctx context.Context, userID string, newPassword string) (bool, error) {
	args := m.Called(ctx, userID, newPassword)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserService) DestroyUser(ctx context.Context, userID string, password string) error {
	args := m.Called(ctx, userID, password)
	return args.Error(0)
}

func (m *MockUserService) RestoreUser(ctx context.Context, email string, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateAccessToken(ctx context.Context, tokenString string) (*portssvc.AccessTokenClaims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.AccessTokenClaims), args.Error(1)
}

func (m *MockTokenService) RevokeAccessToken(ctx context.Context, claims *portssvc.AccessTokenClaims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockTokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	args := m.Called(ctx, userID, refreshTokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)

// --- Test Suite ---
type AuthHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockUserService  *MockUserService
	mockTokenService *MockTokenService
	cfg              *config.Config
}

func (suite *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.cfg = &config.Config{
		IsProduction:               true, // skip swagger registration
		JWTSecret:                  "test-secret-key-that-is-long-enough",
		JWTExpiryDuration:          time.Hour,
		RefreshTokenExpiryDuration: 24 * time.Hour,
		RefreshTokenCookieName:     "rtid",
		RefreshTokenCookiePath:     "/auth",
	}

	suite.mockUserService = new(MockUserService)
	suite.mockTokenService = new(MockTokenService)

	services := &portssvc.ServiceContainer{
		User:  suite.mockUserService,
		Token: suite.mockTokenService,
	}
	handlers.RegisterRoutes(suite.router, suite.cfg, services)
}

// expectSessionIssued wires the token mocks for a successful login-style response.
func (suite *AuthHandlerTestSuite) expectSessionIssued(user *domain.User, accessToken string) {
	suite.mockTokenService.On("GenerateAccessToken", mock.Anything, user).
		Return(accessToken, time.Now().Add(time.Hour), nil).Once()
	suite.mockTokenService.On("GenerateRefreshToken", mock.Anything, user).
		Return("raw-refresh-token", time.Now().Add(24*time.Hour), nil).Once()
	suite.mockUserService.On("UpdateRefreshToken", mock.Anything, user.UserID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil).Once()
}

// authedClaims wires ValidateAccessToken so a Bearer token reaches the handler.
func (suite *AuthHandlerTestSuite) authedClaims(userID string) *portssvc.AccessTokenClaims {
	claims := &portssvc.AccessTokenClaims{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	suite.mockTokenService.On("ValidateAccessToken", mock.Anything, "valid-token").Return(claims, nil)
	return claims
}

func (suite *AuthHandlerTestSuite) doJSON(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer valid-token")
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Login ---

func (suite *AuthHandlerTestSuite) TestLogin_Success() {
	user := &domain.User{UserID: uuid.NewString(), Name: "Login User", Email: "login@example.com"}

	suite.mockUserService.On("AuthenticateUser", mock.Anything, "login@example.com", "password123").
		Return(user, nil).Once()
	suite.expectSessionIssued(user, "access-token-abc")

	w := suite.doJSON(http.MethodPost, "/auth/login", `{"email":"login@example.com","password":"password123"}`, false)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AuthResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Successfully logged in.", resp.Message)
	suite.Equal("access-token-abc", resp.Token)
	suite.Equal(user.UserID, resp.User.UserID)

	// The refresh token cookie must be set.
	cookies := w.Result().Cookies()
	suite.Require().NotEmpty(cookies)
	suite.Equal("rtid", cookies[0].Name)
	suite.True(cookies[0].HttpOnly)

	suite.mockUserService.AssertExpectations(suite.T())
	suite.mockTokenService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestLogin_EmailNotFound() {
	suite.mockUserService.On("AuthenticateUser", mock.Anything, "ghost@example.com", "password123").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodPost, "/auth/login", `{"email":"ghost@example.com","password":"password123"}`, false)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "Email not found.")
}

func (suite *AuthHandlerTestSuite) TestLogin_WrongPassword() {
	suite.mockUserService.On("AuthenticateUser", mock.Anything, "login@example.com", "bad").
		Return(nil, apperrors.ErrInvalidCredentials).Once()

	w := suite.doJSON(http.MethodPost, "/auth/login", `{"email":"login@example.com","password":"bad"}`, false)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Invalid credentials.")
}

func (suite *AuthHandlerTestSuite) TestLogin_ValidationFailure() {
	w := suite.doJSON(http.MethodPost, "/auth/login", `{"email":"not-an-email"}`, false)

	suite.Equal(http.StatusBadRequest, w.Code)

	var resp dto.ValidationErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Contains(resp.Errors, "email")
	suite.Contains(resp.Errors, "password")
	suite.mockUserService.AssertNotCalled(suite.T(), "AuthenticateUser", mock.Anything, mock.Anything, mock.Anything)
}

// --- Register ---

func (suite *AuthHandlerTestSuite) TestRegister_Success() {
	user := &domain.User{UserID: uuid.NewString(), Name: "New User", Email: "new@example.com"}

	suite.mockUserService.On("RegisterUser", mock.Anything, mock.MatchedBy(func(req dto.RegisterUserRequest) bool {
		return req.Email == "new@example.com" && req.Name == "New User"
	}), (*portssvc.AvatarUpload)(nil)).Return(user, nil).Once()
	suite.expectSessionIssued(user, "fresh-token")

	w := suite.doJSON(http.MethodPost, "/auth/register", `{"name":"New User","email":"new@example.com","password":"password123"}`, false)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AuthResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("User created successfully", resp.Message)
	suite.Equal("fresh-token", resp.Token)
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestRegister_DuplicateEmail() {
	suite.mockUserService.On("RegisterUser", mock.Anything, mock.AnythingOfType("dto.RegisterUserRequest"), (*portssvc.AvatarUpload)(nil)).
		Return(nil, apperrors.NewConflictError("Email already exists")).Once()

	w := suite.doJSON(http.MethodPost, "/auth/register", `{"name":"Dup","email":"dup@example.com","password":"password123"}`, false)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(w.Body.String(), "Email already exists")
}

func (suite *AuthHandlerTestSuite) TestRegister_MultipartWithAvatar() {
	user := &domain.User{UserID: uuid.NewString(), Name: "Pic User", Email: "pic@example.com"}

	suite.mockUserService.On("RegisterUser", mock.Anything, mock.MatchedBy(func(req dto.RegisterUserRequest) bool {
		return req.Email == "pic@example.com"
	}), mock.MatchedBy(func(avatar *portssvc.AvatarUpload) bool {
		return avatar != nil && avatar.FileName == "me.png" && len(avatar.Data) > 0
	})).Return(user, nil).Once()
	suite.expectSessionIssued(user, "pic-token")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("name", "Pic User")
	_ = mw.WriteField("email", "pic@example.com")
	_ = mw.WriteField("password", "password123")
	fw, err := mw.CreateFormFile("avatar", "me.png")
	suite.Require().NoError(err)
	_, err = fw.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/auth/register", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockUserService.AssertExpectations(suite.T())
}

// --- Logout ---

func (suite *AuthHandlerTestSuite) TestLogout_Success() {
	userID := uuid.NewString()
	claims := suite.authedClaims(userID)

	suite.mockTokenService.On("RevokeAccessToken", mock.Anything, claims).Return(nil).Once()
	suite.mockUserService.On("ClearRefreshToken", mock.Anything, userID).Return(nil).Once()

	w := suite.doJSON(http.MethodPost, "/auth/logout", "", true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Logged out successfully")
	suite.mockTokenService.AssertExpectations(suite.T())
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestLogout_MissingToken() {
	w := suite.doJSON(http.MethodPost, "/auth/logout", "", false)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Authorization header required")
}

func (suite *AuthHandlerTestSuite) TestLogout_RevokedTokenRejected() {
	suite.mockTokenService.On("ValidateAccessToken", mock.Anything, "valid-token").
		Return(nil, apperrors.ErrUnauthorized).Once()

	w := suite.doJSON(http.MethodPost, "/auth/logout", "", true)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockUserService.AssertNotCalled(suite.T(), "ClearRefreshToken", mock.Anything, mock.Anything)
}

// --- Me ---

func (suite *AuthHandlerTestSuite) TestMe_Success() {
	userID := uuid.NewString()
	suite.authedClaims(userID)
	user := &domain.User{UserID: userID, Name: "Current", Email: "me@example.com"}

	suite.mockUserService.On("GetUserByID", mock.Anything, userID).Return(user, nil).Once()

	w := suite.doJSON(http.MethodGet, "/auth/me", "", true)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.UserEnvelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Returning current user", resp.Message)
	suite.Equal(userID, resp.User.UserID)
}

// --- Refresh ---

func (suite *AuthHandlerTestSuite) TestRefresh_Success() {
	userID := uuid.NewString()
	user := &domain.User{UserID: userID, Email: "refresh@example.com"}

	suite.mockTokenService.On("ValidateAndParseRefreshToken", mock.Anything, userID, "raw-refresh-token").
		Return(user, nil).Once()
	suite.mockTokenService.On("GenerateAccessToken", mock.Anything, user).
		Return("refreshed-token", time.Now().Add(time.Hour), nil).Once()

	req, _ := http.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "rtid", Value: userID + ".raw-refresh-token"})
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.RefreshTokenResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("refreshed-token", resp.Token)
}

func (suite *AuthHandlerTestSuite) TestRefresh_MissingCookie() {
	w := suite.doJSON(http.MethodPost, "/auth/refresh", "", false)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Refresh token missing")
}

func (suite *AuthHandlerTestSuite) TestRefresh_ExpiredToken() {
	userID := uuid.NewString()
	suite.mockTokenService.On("ValidateAndParseRefreshToken", mock.Anything, userID, "stale-token").
		Return(nil, apperrors.ErrRefreshTokenExpired).Once()

	req, _ := http.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "rtid", Value: userID + ".stale-token"})
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Refresh token expired")
}

// --- ResetPassword ---

func (suite *AuthHandlerTestSuite) TestResetPassword_Changed() {
	userID := uuid.NewString()
	claims := suite.authedClaims(userID)

	suite.mockUserService.On("ResetPassword", mock.Anything, userID, "new-password").Return(true, nil).Once()
	suite.mockTokenService.On("RevokeAccessToken", mock.Anything, claims).Return(nil).Once()

	w := suite.doJSON(http.MethodPut, "/auth/reset-password", `{"password":"new-password"}`, true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Password reset successfully!")
	suite.mockTokenService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestResetPassword_SamePasswordKeepsSession() {
	userID := uuid.NewString()
	suite.authedClaims(userID)

	suite.mockUserService.On("ResetPassword", mock.Anything, userID, "same-password").Return(false, nil).Once()

	w := suite.doJSON(http.MethodPut, "/auth/reset-password", `{"password":"same-password"}`, true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "New password must be different from old one!")
	// Session stays valid: no revocation.
	suite.mockTokenService.AssertNotCalled(suite.T(), "RevokeAccessToken", mock.Anything, mock.Anything)
}

// --- Destroy ---

func (suite *AuthHandlerTestSuite) TestDestroy_Success() {
	userID := uuid.NewString()
	claims := suite.authedClaims(userID)

	suite.mockUserService.On("DestroyUser", mock.Anything, userID, "goodbye").Return(nil).Once()
	suite.mockTokenService.On("RevokeAccessToken", mock.Anything, claims).Return(nil).Once()

	w := suite.doJSON(http.MethodDelete, "/auth/destroy", `{"password":"goodbye"}`, true)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "User deleted successfully")
	suite.mockUserService.AssertExpectations(suite.T())
}

func (suite *AuthHandlerTestSuite) TestDestroy_WrongPassword() {
	userID := uuid.NewString()
	suite.authedClaims(userID)

	suite.mockUserService.On("DestroyUser", mock.Anything, userID, "wrong").
		Return(apperrors.ErrInvalidCredentials).Once()

	w := suite.doJSON(http.MethodDelete, "/auth/destroy", `{"password":"wrong"}`, true)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Invalid credentials")
}

func (suite *AuthHandlerTestSuite) TestDestroy_MissingPassword() {
	userID := uuid.NewString()
	suite.authedClaims(userID)

	w := suite.doJSON(http.MethodDelete, "/auth/destroy", `{}`, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "Password required")
	suite.mockUserService.AssertNotCalled(suite.T(), "DestroyUser", mock.Anything, mock.Anything, mock.Anything)
}

// --- Restore ---

func (suite *AuthHandlerTestSuite) TestRestore_Success() {
	user := &domain.User{UserID: uuid.NewString(), Email: "back@example.com"}

	suite.mockUserService.On("RestoreUser", mock.Anything, "back@example.com", "welcome-back").
		Return(user, nil).Once()
	suite.expectSessionIssued(user, "restored-token")

	w := suite.doJSON(http.MethodPut, "/auth/restore", `{"email":"back@example.com","password":"welcome-back"}`, false)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AuthResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Successfully restored account", resp.Message)
	suite.Equal("restored-token", resp.Token)
}

func (suite *AuthHandlerTestSuite) TestRestore_NotDeleted() {
	suite.mockUserService.On("RestoreUser", mock.Anything, "active@example.com", "password").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodPut, "/auth/restore", `{"email":"active@example.com","password":"password"}`, false)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Contains(w.Body.String(), "Account associated with that email has not been deleted")
}

func (suite *AuthHandlerTestSuite) TestRestore_WrongPassword() {
	suite.mockUserService.On("RestoreUser", mock.Anything, "gone@example.com", "wrong").
		Return(nil, apperrors.ErrInvalidCredentials).Once()

	w := suite.doJSON(http.MethodPut, "/auth/restore", `{"email":"gone@example.com","password":"wrong"}`, false)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "Invalid credentials.")
}

func TestAuthHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
