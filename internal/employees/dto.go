// Package employees stores register operators and their credentials.
package employees

import (
	"time"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// EmployeeDTO is the API-safe view of an employee. The password hash never leaves the package
// boundary.
type EmployeeDTO struct {
	ID          uuid.UUID          `json:"id"`
	StoreID     uuid.UUID          `json:"store_id"`
	Email       string             `json:"email"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	Role        enums.EmployeeRole `json:"role"`
	IsActive    bool               `json:"is_active"`
	LastLoginAt *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CreateEmployeeDTO holds creation-time data for an employee.
type CreateEmployeeDTO struct {
	StoreID      uuid.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         enums.EmployeeRole
}

// ToModel converts the DTO into a persisted model.
func (d CreateEmployeeDTO) ToModel() *models.Employee {
	return &models.Employee{
		StoreID:      d.StoreID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Role:         d.Role,
		IsActive:     true,
	}
}

// FromModel maps the persisted employee into a DTO.
func FromModel(m *models.Employee) *EmployeeDTO {
	if m == nil {
		return nil
	}
	return &EmployeeDTO{
		ID:          m.ID,
		StoreID:     m.StoreID,
		Email:       m.Email,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Role:        m.Role,
		IsActive:    m.IsActive,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
	}
}

// DisplayName is the short name printed on receipts, e.g. "Jane D.".
func DisplayName(m *models.Employee) string {
	if m == nil {
		return ""
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + string([]rune(m.LastName)[0]) + "."
}
