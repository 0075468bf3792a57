package dto

// MessageResponse is the minimal response envelope; every endpoint returns at
// least a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthResponse is returned by operations that establish a session.
type AuthResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

// UserEnvelope is returned by operations that yield account state without a
// new token.
type UserEnvelope struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// RefreshTokenResponse represents the response for a successful token refresh.
type RefreshTokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// ValidationErrorResponse carries field-level validation failures.
type ValidationErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}
