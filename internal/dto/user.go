package dto

// RegisterUserRequest defines the payload for account registration.
// The avatar file (if any) travels as a separate multipart part and is not
// bound here.
type RegisterUserRequest struct {
	Name     string `json:"name" form:"name" binding:"required,max=255"`
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginRequest defines the payload for email/password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest defines the data allowed for updating an account.
// Using pointers to differentiate between omitted fields and zero-value
// fields; absent fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=1"`
}

// ResetPasswordRequest defines the payload for a dedicated password reset.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// DestroyUserRequest requires the caller to re-authenticate before the
// account is soft-deleted.
type DestroyUserRequest struct {
	Password string `json:"password" binding:"required"`
}

// RestoreUserRequest defines the payload for restoring a soft-deleted
// account. No session is required; this is a recovery path.
type RestoreUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
