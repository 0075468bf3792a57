package repositories

import (
	"context"
	"time"
)

// TokenRevocationStore records access-token IDs (jti) that were invalidated
// before their natural expiry. Entries only need to live as long as the token
// itself, so implementations may expire them.
type TokenRevocationStore interface {
	// RevokeToken marks the token ID as revoked for the given duration.
	// Revoking an already-revoked ID is not an error.
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsTokenRevoked reports whether the token ID has been revoked.
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}
