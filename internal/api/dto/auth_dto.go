package dto

// Data Transfer Objects for the passwordless signup and token exchange

// SignUpRequest: payload for POST /auth/signup
type SignUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignUpResponse echoes the accepted identity back to the caller.
type SignUpResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for POST /auth/token
type TokenRequest struct {
	Username         string `json:"username" binding:"required"`
	ConfirmationCode string `json:"confirmation_code" binding:"required"`
}

// TokenResponse carries the issued bearer credential.
type TokenResponse struct {
	Token string `json:"token"`
}
