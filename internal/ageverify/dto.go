package ageverify

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// RecordDTO is the API view of a verification attempt. The document number is masked and the
// date of birth is never returned.
type RecordDTO struct {
	ID                      uuid.UUID                 `json:"id"`
	CustomerID              *uuid.UUID                `json:"customer_id,omitempty"`
	IDType                  enums.IDType              `json:"id_type"`
	IDNumberLast4           string                    `json:"id_number_last4"`
	IDExpirationDate        string                    `json:"id_expiration_date"`
	ComputedAge             int                       `json:"computed_age"`
	Outcome                 enums.VerificationOutcome `json:"outcome"`
	DenialReason            *string                   `json:"denial_reason,omitempty"`
	ManagerOverrideEligible bool                      `json:"manager_override_eligible"`
	OverrideOfID            *uuid.UUID                `json:"override_of_id,omitempty"`
	EmployeeID              uuid.UUID                 `json:"employee_id"`
	StoreID                 uuid.UUID                 `json:"store_id"`
	VerifiedAt              time.Time                 `json:"verified_at"`
}

// FromModel maps a decrypted record into its API view.
func FromModel(m *models.AgeVerificationRecord) *RecordDTO {
	if m == nil {
		return nil
	}
	return &RecordDTO{
		ID:                      m.ID,
		CustomerID:              m.CustomerID,
		IDType:                  m.IDType,
		IDNumberLast4:           lastFour(m.IDNumber),
		IDExpirationDate:        m.IDExpirationDate.Format(dobLayout),
		ComputedAge:             m.ComputedAge,
		Outcome:                 m.Outcome,
		DenialReason:            m.DenialReason,
		ManagerOverrideEligible: m.ManagerOverrideEligible,
		OverrideOfID:            m.OverrideOfID,
		EmployeeID:              m.EmployeeID,
		StoreID:                 m.StoreID,
		VerifiedAt:              m.VerifiedAt,
	}
}

func lastFour(value string) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= 4 {
		return string(runes)
	}
	return string(runes[len(runes)-4:])
}
