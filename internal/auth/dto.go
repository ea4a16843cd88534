package auth

import (
	"github.com/calebmorton/schedtrack-backend/internal/users"
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
)

// LoginRequest carries the credentials posted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after successful authentication.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	Role        enums.Role     `json:"role"`
	User        *users.UserDTO `json:"user"`
}

// MeResponse describes the authenticated principal.
type MeResponse struct {
	Role enums.Role     `json:"role"`
	User *users.UserDTO `json:"user"`
}
