package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// AgeVerificationRecord is written once per verification attempt and never updated. IDNumber
// and DateOfBirth hold encrypted envelopes at rest.
type AgeVerificationRecord struct {
	ID                      uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID              *uuid.UUID                `gorm:"column:customer_id;type:uuid;index"`
	IDType                  enums.IDType              `gorm:"column:id_type;not null"`
	IDNumber                string                    `gorm:"column:id_number;not null"`
	DateOfBirth             string                    `gorm:"column:date_of_birth;not null"`
	IDExpirationDate        time.Time                 `gorm:"column:id_expiration_date;not null"`
	ComputedAge             int                       `gorm:"column:computed_age;not null"`
	Outcome                 enums.VerificationOutcome `gorm:"column:outcome;not null"`
	DenialReason            *string                   `gorm:"column:denial_reason"`
	ManagerOverrideEligible bool                      `gorm:"column:manager_override_eligible;not null;default:false"`
	OverrideOfID            *uuid.UUID                `gorm:"column:override_of_id;type:uuid"`
	EmployeeID              uuid.UUID                 `gorm:"column:employee_id;type:uuid;not null"`
	StoreID                 uuid.UUID                 `gorm:"column:store_id;type:uuid;not null;index"`
	VerifiedAt              time.Time                 `gorm:"column:verified_at;not null"`
}

func (AgeVerificationRecord) TableName() string { return "age_verifications" }

func (r *AgeVerificationRecord) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
