package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/akshayde/account_management_app/internal/apperrors"
	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
	"github.com/akshayde/account_management_app/internal/dto"
	"github.com/akshayde/account_management_app/internal/middleware"
	"github.com/akshayde/account_management_app/internal/platform/config"
	"github.com/akshayde/account_management_app/internal/utils"

	"github.com/akshayde/account_management_app/internal/core/domain"
)

// maxAvatarBytes caps the accepted avatar upload size.
const maxAvatarBytes = 5 << 20

// AuthHandler handles the account lifecycle endpoints.
type AuthHandler struct {
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
	cfg          *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer) *AuthHandler {
	return &AuthHandler{
		userService:  services.User,
		tokenService: services.Token,
		cfg:          cfg,
	}
}

// registerAuthRoutes sets up the routes for the account lifecycle.
func registerAuthRoutes(rg *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(cfg, services)

	// Rate limit the credential-guessing surface: 5 requests per minute per IP
	rate, _ := limiter.NewRateFromFormatted("5-M")
	store := memory.NewStore()
	ipLimiter := limiter.New(store, rate)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", middleware.RateLimit(ipLimiter), h.Login)
		auth.POST("/register", h.Register)
		auth.PUT("/restore", h.Restore)
		auth.POST("/refresh", h.Refresh)
	}

	authed := rg.Group("/auth", middleware.AuthMiddleware(services.Token))
	{
		authed.POST("/logout", h.Logout)
		authed.GET("/me", h.Me)
		authed.PUT("/reset-password", h.ResetPassword)
		authed.DELETE("/destroy", h.Destroy)
	}
}

// Login godoc
// @Summary Log in with email and password
// @Description Authenticates an active account and returns it with a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Message: "Validation failed", Errors: bindingErrors(err)})
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "Email not found."})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Invalid credentials."})
		default:
			h.serverError(c, "Failed to authenticate user", err)
		}
		return
	}

	token, err := h.issueSession(c, user)
	if err != nil {
		h.serverError(c, "Failed to issue session", err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Message: "Successfully logged in.",
		User:    dto.ToUserResponse(user),
		Token:   token,
	})
}

// Register godoc
// @Summary Register a new account
// @Description Creates a new active account, optionally uploading an avatar image, and returns it with a session token.
// @Tags auth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param register body dto.RegisterUserRequest true "Registration Info"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 409 {object} dto.MessageResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterUserRequest
	var avatar *portssvc.AvatarUpload

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Message: "Validation failed", Errors: bindingErrors(err)})
			return
		}
		fileHeader, err := c.FormFile("avatar")
		if err == nil {
			avatar, err = readAvatar(fileHeader)
			if err != nil {
				c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
					Message: "Validation failed",
					Errors:  map[string][]string{"avatar": {err.Error()}},
				})
				return
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Message: "Validation failed", Errors: bindingErrors(err)})
			return
		}
	}

	user, err := h.userService.RegisterUser(c.Request.Context(), req, avatar)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, dto.MessageResponse{Message: "Email already exists"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
				Message: "Validation failed",
				Errors:  map[string][]string{"avatar": {appErrorMessage(err)}},
			})
		default:
			h.serverError(c, "Failed to register user", err)
		}
		return
	}

	token, err := h.issueSession(c, user)
	if err != nil {
		h.serverError(c, "Failed to issue session", err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Message: "User created successfully",
		User:    dto.ToUserResponse(user),
		Token:   token,
	})
}

// Logout godoc
// @Summary Log out
// @Description Invalidates the current session token. Invalidating an already-invalid token is not an error.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetTokenClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Not logged in"})
		return
	}

	if err := h.tokenService.RevokeAccessToken(c.Request.Context(), claims); err != nil {
		h.serverError(c, "Failed to revoke token", err)
		return
	}
	if err := h.userService.ClearRefreshToken(c.Request.Context(), claims.UserID); err != nil {
		h.serverError(c, "Failed to clear refresh token", err)
		return
	}
	h.clearRefreshCookie(c)

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

// Me godoc
// @Summary Current account
// @Description Returns the authenticated account's current state.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserEnvelope
// @Failure 401 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Not logged in"})
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "User not found"})
			return
		}
		h.serverError(c, "Failed to fetch current user", err)
		return
	}

	c.JSON(http.StatusOK, dto.UserEnvelope{
		Message: "Returning current user",
		User:    dto.ToUserResponse(user),
	})
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Exchanges the refresh-token cookie for a fresh access token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} dto.MessageResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	cookie, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Refresh token missing"})
		return
	}

	userID, rawToken, ok := splitRefreshCookie(cookie)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Invalid refresh token"})
		return
	}

	user, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), userID, rawToken)
	if err != nil {
		h.clearRefreshCookie(c)
		if errors.Is(err, apperrors.ErrRefreshTokenExpired) {
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Refresh token expired"})
			return
		}
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Invalid refresh token"})
		return
	}

	token, _, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		h.serverError(c, "Failed to generate access token", err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshTokenResponse{Message: "Token refreshed", Token: token})
}

// ResetPassword godoc
// @Summary Reset the password of the current account
// @Description Stores a new password and forces a re-login. Supplying the current password again is a no-op that keeps the session.
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body dto.ResetPasswordRequest true "New password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /auth/reset-password [put]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Message: "Validation failed", Errors: bindingErrors(err)})
		return
	}

	claims, ok := middleware.GetTokenClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Not logged in"})
		return
	}

	changed, err := h.userService.ResetPassword(c.Request.Context(), claims.UserID, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "User not found"})
			return
		}
		h.serverError(c, "Failed to reset password", err)
		return
	}

	if !changed {
		// Short-circuit: nothing was mutated and the session stays valid.
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "New password must be different from old one!"})
		return
	}

	// Force a re-login: the token used for this request is no longer honored.
	if err := h.tokenService.RevokeAccessToken(c.Request.Context(), claims); err != nil {
		h.serverError(c, "Failed to revoke token after password reset", err)
		return
	}
	h.clearRefreshCookie(c)

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password reset successfully!"})
}

// Destroy godoc
// @Summary Soft-delete the current account
// @Description Re-authenticates with the password, soft-deletes the account and invalidates the session.
// @Tags auth
// @Accept json
// @Produce json
// @Param destroy body dto.DestroyUserRequest true "Password confirmation"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /auth/destroy [delete]
func (h *AuthHandler) Destroy(c *gin.Context) {
	var req dto.DestroyUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Message: "Password required", Errors: bindingErrors(err)})
		return
	}

	claims, ok := middleware.GetTokenClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Not logged in"})
		return
	}

	if err := h.userService.DestroyUser(c.Request.Context(), claims.UserID, req.Password); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Invalid credentials"})
		case errors.Is(err, apperrors.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Not logged in"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "User not found"})
		default:
			h.serverError(c, "Failed to delete user", err)
		}
		return
	}

	if err := h.tokenService.RevokeAccessToken(c.Request.Context(), claims); err != nil {
		// The account is already gone; an unrevoked token dies with its TTL.
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to revoke token after destroy", slog.String("error", err.Error()))
	}
	h.clearRefreshCookie(c)

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}

// Restore godoc
// @Summary Restore a soft-deleted account
// @Description Verifies the credentials of a soft-deleted account, clears its deletion marker and returns a fresh session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param restore body dto.RestoreUserRequest true "Account credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Router /auth/restore [put]
func (h *AuthHandler) Restore(c *gin.Context) {
	var req dto.RestoreUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Message: "Validation failed", Errors: bindingErrors(err)})
		return
	}

	user, err := h.userService.RestoreUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "Account associated with that email has not been deleted"})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Invalid credentials."})
		default:
			h.serverError(c, "Failed to restore user", err)
		}
		return
	}

	token, err := h.issueSession(c, user)
	if err != nil {
		h.serverError(c, "Failed to issue session", err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Message: "Successfully restored account",
		User:    dto.ToUserResponse(user),
		Token:   token,
	})
}

// issueSession generates an access token plus a refresh token, stores the
// refresh-token hash on the user row and sets the refresh cookie.
func (h *AuthHandler) issueSession(c *gin.Context, user *domain.User) (string, error) {
	ctx := c.Request.Context()

	accessToken, _, err := h.tokenService.GenerateAccessToken(ctx, user)
	if err != nil {
		return "", err
	}

	rawRefresh, refreshExpiry, err := h.tokenService.GenerateRefreshToken(ctx, user)
	if err != nil {
		return "", err
	}
	if err := h.userService.UpdateRefreshToken(ctx, user.UserID, utils.HashRefreshToken(rawRefresh), refreshExpiry); err != nil {
		return "", err
	}

	c.SetCookie(
		h.cfg.RefreshTokenCookieName,
		joinRefreshCookie(user.UserID, rawRefresh),
		int(h.cfg.RefreshTokenExpiryDuration.Seconds()),
		h.cfg.RefreshTokenCookiePath,
		"",
		h.cfg.IsProduction,
		true,
	)

	return accessToken, nil
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(h.cfg.RefreshTokenCookieName, "", -1, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
}

func (h *AuthHandler) serverError(c *gin.Context, msg string, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Error(msg, slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msg})
}

// readAvatar loads the multipart avatar file into memory.
func readAvatar(fh *multipart.FileHeader) (*portssvc.AvatarUpload, error) {
	if fh.Size > maxAvatarBytes {
		return nil, errors.New("avatar must not exceed 5MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("avatar could not be read")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes+1))
	if err != nil || len(data) > maxAvatarBytes {
		return nil, errors.New("avatar could not be read")
	}

	return &portssvc.AvatarUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// The refresh cookie carries "<userID>.<token>" so the refresh endpoint can
// locate the stored hash without a session.
func joinRefreshCookie(userID, rawToken string) string {
	return userID + "." + rawToken
}

func splitRefreshCookie(cookie string) (string, string, bool) {
	idx := strings.LastIndex(cookie, ".")
	if idx <= 0 || idx == len(cookie)-1 {
		return "", "", false
	}
	return cookie[:idx], cookie[idx+1:], true
}

// appErrorMessage extracts the human-readable message from an AppError chain.
func appErrorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
