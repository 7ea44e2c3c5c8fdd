package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	EmployeeID uuid.UUID
	StoreID    uuid.UUID
	Role       enums.EmployeeRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to register clients.
type AccessTokenClaims struct {
	EmployeeID uuid.UUID          `json:"employee_id"`
	StoreID    uuid.UUID          `json:"store_id"`
	Role       enums.EmployeeRole `json:"role"`
	jwt.RegisteredClaims
}

// Can reports whether the token's role grants perm.
func (c *AccessTokenClaims) Can(perm enums.Permission) bool {
	return c != nil && c.Role.HasPermission(perm)
}
