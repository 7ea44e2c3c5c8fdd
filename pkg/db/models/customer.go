package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer carries the loyalty balance updated by each completed sale. Email, Phone and
// DateOfBirth hold encrypted envelopes at rest.
type Customer struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	FirstName          string    `gorm:"column:first_name;not null"`
	LastName           string    `gorm:"column:last_name;not null;index"`
	Email              *string   `gorm:"column:email"`
	Phone              *string   `gorm:"column:phone"`
	DateOfBirth        *string   `gorm:"column:date_of_birth"`
	LoyaltyPoints      int64     `gorm:"column:loyalty_points;not null;default:0;check:customers_loyalty_points_check,loyalty_points >= 0"`
	LifetimeSpendCents int64     `gorm:"column:lifetime_spend_cents;not null;default:0"`
	LoyaltyTier        string    `gorm:"column:loyalty_tier;not null;default:''"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
