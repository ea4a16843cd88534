package auth

import (
	"github.com/calebmorton/schedtrack-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	// Role is empty when the user has no profile row. Authorization checks
	// treat an empty role as no access; display paths default it to scheduler.
	Role enums.Role
	JTI  string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}
