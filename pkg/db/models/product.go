package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a sellable catalog item. Products are never deleted; IsActive flips instead.
type Product struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	StoreID        uuid.UUID  `gorm:"column:store_id;type:uuid;not null;uniqueIndex:products_store_sku_key,priority:1"`
	SKU            string     `gorm:"column:sku;not null;uniqueIndex:products_store_sku_key,priority:2"`
	Name           string     `gorm:"column:name;not null"`
	Category       string     `gorm:"column:category;not null;default:''"`
	PriceCents     int64      `gorm:"column:price_cents;not null;check:products_price_cents_check,price_cents >= 0"`
	OnHandQty      int        `gorm:"column:on_hand_qty;not null;default:0;check:products_on_hand_qty_check,on_hand_qty >= 0"`
	AgeRestricted  bool       `gorm:"column:age_restricted;not null;default:false"`
	LotNumber      *string    `gorm:"column:lot_number"`
	ExpirationDate *time.Time `gorm:"column:expiration_date"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
