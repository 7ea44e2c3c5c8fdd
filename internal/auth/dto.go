package auth

import (
	"github.com/Uptivity/justsell-pos-sub002/internal/employees"
	"github.com/Uptivity/justsell-pos-sub002/internal/stores"
)

// LoginRequest captures the employee credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair plus the employee and the store they work at.
type LoginResponse struct {
	AccessToken  string                 `json:"access_token"`
	RefreshToken string                 `json:"refresh_token"`
	ExpiresIn    int                    `json:"expires_in"`
	Employee     *employees.EmployeeDTO `json:"employee"`
	Store        *stores.StoreDTO       `json:"store"`
}
