package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// Employee is a register operator who authenticates against the API.
type Employee struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	StoreID      uuid.UUID          `gorm:"column:store_id;type:uuid;not null;index"`
	Email        string             `gorm:"column:email;not null;uniqueIndex:employees_email_key"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	FirstName    string             `gorm:"column:first_name;not null"`
	LastName     string             `gorm:"column:last_name;not null"`
	Role         enums.EmployeeRole `gorm:"column:role;not null"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
