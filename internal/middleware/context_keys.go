package middleware

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
)

// userIDKey is the key used to store the authenticated user's ID in the request context.
const userIDKey = contextKey("userID")

// tokenClaimsKey is the key used to store the validated access-token claims
// of the current request, so handlers can revoke the exact token presented.
const tokenClaimsKey = contextKey("tokenClaims")

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetTokenClaimsFromContext retrieves the validated access-token claims from
// the Gin context.
func GetTokenClaimsFromContext(c *gin.Context) (*portssvc.AccessTokenClaims, bool) {
	claims, ok := c.Request.Context().Value(tokenClaimsKey).(*portssvc.AccessTokenClaims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}
