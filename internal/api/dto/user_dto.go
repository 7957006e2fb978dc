package dto

import (
	"time"

	"github.com/openticket/helpdesk/internal/domain"
)

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID         int64       `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	FullName   string      `json:"full_name"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		FullName:   user.FullName(),
		Role:       user.Role,
		Department: user.Department,
	}
}

// TokenObtainRequest payload for login.
type TokenObtainRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// TokenRefreshRequest payload exchanging a refresh token.
type TokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenVerifyRequest payload for token verification.
type TokenVerifyRequest struct {
	Token string `json:"token"`
}

// TokenPairResponse standard response for token endpoints.
type TokenPairResponse struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}
