package types

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/forkbook/backend/internal/models"
)

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
}
