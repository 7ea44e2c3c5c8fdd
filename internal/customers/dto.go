package customers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
)

// CustomerDTO is the API view of a customer.
type CustomerDTO struct {
	ID                 uuid.UUID `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              *string   `json:"email,omitempty"`
	Phone              *string   `json:"phone,omitempty"`
	DateOfBirth        *string   `json:"date_of_birth,omitempty"`
	LoyaltyPoints      int64     `json:"loyalty_points"`
	LifetimeSpendCents int64     `json:"lifetime_spend_cents"`
	LoyaltyTier        string    `json:"loyalty_tier,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FromModel maps a decrypted customer into a DTO.
func FromModel(m *models.Customer) *CustomerDTO {
	if m == nil {
		return nil
	}
	return &CustomerDTO{
		ID:                 m.ID,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Email:              m.Email,
		Phone:              m.Phone,
		DateOfBirth:        m.DateOfBirth,
		LoyaltyPoints:      m.LoyaltyPoints,
		LifetimeSpendCents: m.LifetimeSpendCents,
		LoyaltyTier:        m.LoyaltyTier,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// DisplayName joins the customer's first and last name as printed on receipts.
func DisplayName(m *models.Customer) string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
