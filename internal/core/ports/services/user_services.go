package services

import (
	"context"
	"time"

	"github.com/akshayde/account_management_app/internal/core/domain"
	"github.com/akshayde/account_management_app/internal/dto"
)

// AvatarUpload carries the raw bytes of an avatar image supplied at
// registration time.
type AvatarUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves an active user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// RegisterUser creates a new active account with a hashed password and,
	// when avatar is non-nil, an uploaded avatar image.
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest, avatar *AvatarUpload) (*domain.User, error)

	// UpdateUser applies a partial update to the user's profile. Absent
	// fields are left unchanged; a provided password is hashed before it is
	// stored.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*domain.User, error)

	// ResetPassword replaces the user's password. It returns false without
	// mutating state when the new password verifies against the current
	// hash.
	ResetPassword(ctx context.Context, userID string, newPassword string) (bool, error)

	// UpdateRefreshToken updates the refresh token details for a user.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken clears the refresh token for a user.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserLifecycleSvc defines operations that move an account between the
// active and soft-deleted states
type UserLifecycleSvc interface {
	// DestroyUser re-authenticates with the given password, soft-deletes
	// the account and dispatches the deletion notification.
	DestroyUser(ctx context.Context, userID string, password string) error

	// RestoreUser verifies the credentials of a soft-deleted account and,
	// only on success, clears its soft-delete marker.
	RestoreUser(ctx context.Context, email string, password string) (*domain.User, error)
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates an active user with email and password.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
	UserAuthSvc
}
