package repositories

import (
	"context"
	"time"

	"github.com/akshayde/account_management_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific active user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves an active (non-soft-deleted) user by email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindDeletedUserByEmail retrieves a soft-deleted user by email. Active
	// users are invisible to this lookup; it exists solely for the restore
	// path.
	FindDeletedUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. Uniqueness of email is enforced
	// atomically by the storage layer.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates an existing active user's details.
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateRefreshToken updates the refresh token details for a user.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken clears the refresh token for a user.
	ClearRefreshToken(ctx context.Context, userID string) error

	// ReplacePassword stores a new password hash and clears the refresh token
	// atomically, so the old session is never left honored against the new
	// password.
	ReplacePassword(ctx context.Context, userID string, passwordHash string, updatedAt time.Time) error
}

// UserLifecycleManager defines operations for managing the soft-delete state
type UserLifecycleManager interface {
	// MarkUserDeleted marks a user as deleted (soft delete) and clears the
	// refresh token atomically. Either both mutations land or neither does.
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time) error

	// RestoreUser clears the soft-delete marker on a user.
	RestoreUser(ctx context.Context, userID string, restoredAt time.Time) error
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
}
