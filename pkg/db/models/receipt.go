package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// ReceiptSequence holds the last receipt sequence issued for a calendar day (YYMMDD).
type ReceiptSequence struct {
	Day       string `gorm:"column:day;primaryKey"`
	LastValue int    `gorm:"column:last_value;not null;default:0"`
}

// ReceiptPrint records a print request for a transaction.
type ReceiptPrint struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID uuid.UUID           `gorm:"column:transaction_id;type:uuid;not null;index"`
	EmployeeID    uuid.UUID           `gorm:"column:employee_id;type:uuid;not null"`
	Format        enums.ReceiptFormat `gorm:"column:format;not null"`
	Copies        int                 `gorm:"column:copies;not null;default:1"`
	PrintedAt     time.Time           `gorm:"column:printed_at;not null"`
}

func (p *ReceiptPrint) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
