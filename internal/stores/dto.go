// Package stores holds retail location data: receipt header and tax jurisdiction.
package stores

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	AddressLine1    string    `json:"address_line1"`
	AddressLine2    *string   `json:"address_line2,omitempty"`
	City            string    `json:"city"`
	State           string    `json:"state"`
	PostalCode      string    `json:"postal_code"`
	Phone           *string   `json:"phone,omitempty"`
	TaxJurisdiction string    `json:"tax_jurisdiction"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfileDTO is the store as seen by a signed-in terminal.
type ProfileDTO struct {
	StoreDTO
	TaxRate      string   `json:"tax_rate"`
	AddressLines []string `json:"address_lines"`
}

// CreateStoreDTO holds creation-time data for a new store.
type CreateStoreDTO struct {
	Name            string
	AddressLine1    string
	AddressLine2    *string
	City            string
	State           string
	PostalCode      string
	Phone           *string
	TaxJurisdiction string
}

// ToModel converts the DTO into a persisted model. An empty jurisdiction defaults to the state.
func (d CreateStoreDTO) ToModel() *models.Store {
	jurisdiction := strings.ToUpper(strings.TrimSpace(d.TaxJurisdiction))
	if jurisdiction == "" {
		jurisdiction = strings.ToUpper(strings.TrimSpace(d.State))
	}
	return &models.Store{
		Name:            strings.TrimSpace(d.Name),
		AddressLine1:    strings.TrimSpace(d.AddressLine1),
		AddressLine2:    d.AddressLine2,
		City:            strings.TrimSpace(d.City),
		State:           strings.ToUpper(strings.TrimSpace(d.State)),
		PostalCode:      strings.TrimSpace(d.PostalCode),
		Phone:           d.Phone,
		TaxJurisdiction: jurisdiction,
	}
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:              m.ID,
		Name:            m.Name,
		AddressLine1:    m.AddressLine1,
		AddressLine2:    m.AddressLine2,
		City:            m.City,
		State:           m.State,
		PostalCode:      m.PostalCode,
		Phone:           m.Phone,
		TaxJurisdiction: m.TaxJurisdiction,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// AddressLines returns the printable address block.
func AddressLines(m *models.Store) []string {
	if m == nil {
		return nil
	}
	lines := []string{m.AddressLine1}
	if m.AddressLine2 != nil && strings.TrimSpace(*m.AddressLine2) != "" {
		lines = append(lines, strings.TrimSpace(*m.AddressLine2))
	}
	lines = append(lines, strings.TrimSpace(m.City+", "+m.State+" "+m.PostalCode))
	return lines
}
