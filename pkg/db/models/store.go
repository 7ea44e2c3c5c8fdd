package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a physical retail location. Receipts print its header block.
type Store struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name            string    `gorm:"column:name;not null"`
	AddressLine1    string    `gorm:"column:address_line1;not null"`
	AddressLine2    *string   `gorm:"column:address_line2"`
	City            string    `gorm:"column:city;not null"`
	State           string    `gorm:"column:state;not null"`
	PostalCode      string    `gorm:"column:postal_code;not null"`
	Phone           *string   `gorm:"column:phone"`
	TaxJurisdiction string    `gorm:"column:tax_jurisdiction;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
