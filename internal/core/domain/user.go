package domain

import "time"

// User represents a user account in the domain.
// PasswordHash is never serialized; it only travels between the service and
// the repository layer.
type User struct {
	UserID    string  `json:"userID"` // Primary Key (UUID)
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl,omitempty"`

	PasswordHash string `json:"-"`

	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete

	// Refresh token state, stored hashed on the user row.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}

// IsDeleted reports whether the account is currently soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
