package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// Transaction is a completed sale. Rows are inserted together with their line items inside one
// database transaction and are never updated afterwards. CustomerName and LoyaltyBalanceAfter
// snapshot the customer at sale time so reprinted receipts match the original.
type Transaction struct {
	ID                       uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ReceiptNumber            string              `gorm:"column:receipt_number;not null;uniqueIndex:transactions_receipt_number_key"`
	StoreID                  uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index:transactions_store_created_idx,priority:1"`
	CustomerID               *uuid.UUID          `gorm:"column:customer_id;type:uuid;index"`
	EmployeeID               uuid.UUID           `gorm:"column:employee_id;type:uuid;not null"`
	SubtotalCents            int64               `gorm:"column:subtotal_cents;not null"`
	TaxCents                 int64               `gorm:"column:tax_cents;not null"`
	TotalCents               int64               `gorm:"column:total_cents;not null"`
	TaxRate                  decimal.Decimal     `gorm:"column:tax_rate;type:numeric(6,5);not null"`
	PaymentMethod            enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentStatus            enums.PaymentStatus `gorm:"column:payment_status;not null"`
	PaymentReference         *string             `gorm:"column:payment_reference"`
	CashTenderedCents        *int64              `gorm:"column:cash_tendered_cents"`
	ChangeCents              *int64              `gorm:"column:change_cents"`
	AgeVerificationRequired  bool                `gorm:"column:age_verification_required;not null;default:false"`
	AgeVerificationCompleted bool                `gorm:"column:age_verification_completed;not null;default:false"`
	AgeVerificationID        *uuid.UUID          `gorm:"column:age_verification_id;type:uuid"`
	LoyaltyPointsEarned      int64               `gorm:"column:loyalty_points_earned;not null;default:0"`
	LoyaltyPointsRedeemed    int64               `gorm:"column:loyalty_points_redeemed;not null;default:0"`
	CustomerName             *string             `gorm:"column:customer_name"`
	LoyaltyBalanceAfter      *int64              `gorm:"column:loyalty_balance_after"`
	LineItems                []LineItem          `gorm:"foreignKey:TransactionID"`
	CreatedAt                time.Time           `gorm:"column:created_at;autoCreateTime;index:transactions_store_created_idx,priority:2"`
	UpdatedAt                time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// LineItem snapshots one product and quantity at sale time.
type LineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID  uuid.UUID `gorm:"column:transaction_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	ProductSKU     string    `gorm:"column:product_sku;not null"`
	AgeRestricted  bool      `gorm:"column:age_restricted;not null;default:false"`
	Quantity       int       `gorm:"column:quantity;not null;check:transaction_line_items_quantity_check,quantity > 0"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int64     `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (LineItem) TableName() string { return "transaction_line_items" }

func (l *LineItem) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
