package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

// ProductDTO is the API view of a catalog item.
type ProductDTO struct {
	ID             uuid.UUID  `json:"id"`
	StoreID        uuid.UUID  `json:"store_id"`
	SKU            string     `json:"sku"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	PriceCents     int64      `json:"price_cents"`
	OnHandQty      int        `json:"on_hand_qty"`
	AgeRestricted  bool       `json:"age_restricted"`
	LotNumber      *string    `json:"lot_number,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ListResult is one page of products.
type ListResult struct {
	Products []ProductDTO    `json:"products"`
	Meta     pagination.Meta `json:"pagination"`
}

// FromModel maps a product row into a DTO.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:             m.ID,
		StoreID:        m.StoreID,
		SKU:            m.SKU,
		Name:           m.Name,
		Category:       m.Category,
		PriceCents:     m.PriceCents,
		OnHandQty:      m.OnHandQty,
		AgeRestricted:  m.AgeRestricted,
		LotNumber:      m.LotNumber,
		ExpirationDate: m.ExpirationDate,
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
