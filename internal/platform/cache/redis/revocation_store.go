package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	portsrepo "github.com/akshayde/account_management_app/internal/core/ports/repositories"
	"github.com/akshayde/account_management_app/internal/platform/config"
)

const revokedTokenKeyPrefix = "revoked_token:"

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.RedisAddr, err)
	}
	return client, nil
}

// RevocationStore keeps revoked access-token IDs in Redis. Each entry carries
// a TTL equal to the remaining token life, so the set never outgrows the set
// of tokens that could still be presented.
type RevocationStore struct {
	client *goredis.Client
}

// NewRevocationStore creates a RevocationStore on top of an existing client.
func NewRevocationStore(client *goredis.Client) *RevocationStore {
	return &RevocationStore{client: client}
}

// Ensure RevocationStore implements the port
var _ portsrepo.TokenRevocationStore = (*RevocationStore)(nil)

// RevokeToken marks the token ID as revoked for the given duration.
func (s *RevocationStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, revokedTokenKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether the token ID has been revoked.
func (s *RevocationStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, revokedTokenKeyPrefix+tokenID).Err()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}
