package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
)

// AuthMiddleware creates a Gin middleware handler that validates access
// tokens. Validation goes through the token service so that revoked tokens
// (logout, password reset, destroy) are rejected even before their expiry.
func AuthMiddleware(tokenService portssvc.TokenSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := tokenService.ValidateAccessToken(c.Request.Context(), parts[1])
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
			return
		}

		// Store the user ID and the token claims in the request context
		ctxWithUser := context.WithValue(c.Request.Context(), userIDKey, claims.UserID)
		ctxWithClaims := context.WithValue(ctxWithUser, tokenClaimsKey, claims)

		// Enrich the request logger with the authenticated user
		enrichedLogger := logger.With(slog.String("user_id", claims.UserID))
		ctxWithLogger := context.WithValue(ctxWithClaims, loggerCtxKey, enrichedLogger)

		c.Request = c.Request.WithContext(ctxWithLogger)
		c.Next()
	}
}
