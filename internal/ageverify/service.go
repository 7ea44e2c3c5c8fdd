package ageverify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
)

const dobLayout = "2006-01-02"

type recordRepository interface {
	Create(ctx context.Context, record *models.AgeVerificationRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AgeVerificationRecord, error)
}

// Service records verification attempts and answers checkout gate queries.
type Service interface {
	Verify(ctx context.Context, input VerifyInput) (*models.AgeVerificationRecord, error)
	Override(ctx context.Context, input OverrideInput) (*models.AgeVerificationRecord, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*models.AgeVerificationRecord, error)
	CheckCart(ctx context.Context, input CartCheck) error
}

// VerifyInput captures one document presented at the counter.
type VerifyInput struct {
	StoreID          uuid.UUID
	EmployeeID       uuid.UUID
	CustomerID       *uuid.UUID
	IDType           enums.IDType
	IDNumber         string
	DateOfBirth      time.Time
	IDExpirationDate time.Time
}

// OverrideInput captures a manager's override of a denied verification.
type OverrideInput struct {
	VerificationID uuid.UUID
	StoreID        uuid.UUID
	EmployeeID     uuid.UUID
	Role           enums.EmployeeRole
	Reason         string
}

// CartCheck is the age-related state of a cart at checkout.
type CartCheck struct {
	StoreID        uuid.UUID
	CustomerID     *uuid.UUID
	Required       bool
	Completed      bool
	VerificationID *uuid.UUID
}

type service struct {
	repo  recordRepository
	logg  *logger.Logger
	clock func() time.Time
}

// NewService builds the verification service.
func NewService(repo recordRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("verification repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, clock: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Verify(ctx context.Context, input VerifyInput) (*models.AgeVerificationRecord, error) {
	if input.StoreID == uuid.Nil || input.EmployeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !input.IDType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id_type")
	}
	idNumber := strings.TrimSpace(input.IDNumber)
	if idNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id_number is required")
	}

	now := s.clock()
	decision, err := Evaluate(Input{
		DateOfBirth:      input.DateOfBirth,
		IDExpirationDate: input.IDExpirationDate,
		On:               now,
	})
	if err != nil {
		return nil, err
	}

	record := &models.AgeVerificationRecord{
		CustomerID:              input.CustomerID,
		IDType:                  input.IDType,
		IDNumber:                idNumber,
		DateOfBirth:             input.DateOfBirth.Format(dobLayout),
		IDExpirationDate:        dateOnly(input.IDExpirationDate),
		ComputedAge:             decision.Age,
		Outcome:                 decision.Outcome,
		ManagerOverrideEligible: decision.OverrideEligible,
		EmployeeID:              input.EmployeeID,
		StoreID:                 input.StoreID,
		VerifiedAt:              now,
	}
	if decision.DenialReason != "" {
		reason := decision.DenialReason
		record.DenialReason = &reason
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record age verification")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"verification_id": record.ID.String(),
		"outcome":         record.Outcome.String(),
		"computed_age":    record.ComputedAge,
	})
	s.logg.Info(logCtx, "age_verification.recorded")
	return record, nil
}

func (s *service) Override(ctx context.Context, input OverrideInput) (*models.AgeVerificationRecord, error) {
	if !input.Role.HasPermission(enums.PermissionAgeVerificationOverride) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager approval required to override age verification")
	}
	original, err := s.load(ctx, input.StoreID, input.VerificationID)
	if err != nil {
		return nil, err
	}
	if original.Outcome != enums.VerificationOutcomeDenied {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only denied verifications can be overridden")
	}
	if !original.ManagerOverrideEligible {
		return nil, pkgerrors.Policy("Verification is not eligible for manager override", map[string]any{
			"verification_id": original.ID.String(),
			"computed_age":    original.ComputedAge,
		})
	}

	originalID := original.ID
	record := &models.AgeVerificationRecord{
		CustomerID:       original.CustomerID,
		IDType:           original.IDType,
		IDNumber:         original.IDNumber,
		DateOfBirth:      original.DateOfBirth,
		IDExpirationDate: original.IDExpirationDate,
		ComputedAge:      original.ComputedAge,
		Outcome:          enums.VerificationOutcomeOverridden,
		OverrideOfID:     &originalID,
		EmployeeID:       input.EmployeeID,
		StoreID:          original.StoreID,
		VerifiedAt:       s.clock(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record age verification override")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"verification_id": record.ID.String(),
		"override_of_id":  originalID.String(),
		"override_reason": strings.TrimSpace(input.Reason),
	})
	s.logg.Warn(logCtx, "age_verification.overridden")
	return record, nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*models.AgeVerificationRecord, error) {
	return s.load(ctx, storeID, id)
}

// load returns the record only when it belongs to storeID.
func (s *service) load(ctx context.Context, storeID, id uuid.UUID) (*models.AgeVerificationRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "age verification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load age verification")
	}
	if record.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "age verification not found")
	}
	return record, nil
}

func (s *service) CheckCart(ctx context.Context, input CartCheck) error {
	if !input.Required {
		return nil
	}
	if !input.Completed {
		return pkgerrors.Policy("Age verification required for restricted products", nil)
	}
	if input.VerificationID == nil {
		return nil
	}

	record, err := s.repo.FindByID(ctx, *input.VerificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return denied(*input.VerificationID, "verification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load age verification")
	}
	if record.StoreID != input.StoreID {
		return denied(record.ID, "verification belongs to another store")
	}
	if !record.Outcome.Permits() {
		reason := "verification was denied"
		if record.DenialReason != nil {
			reason = *record.DenialReason
		}
		return denied(record.ID, reason)
	}
	if input.CustomerID != nil && record.CustomerID != nil && *input.CustomerID != *record.CustomerID {
		return denied(record.ID, "verification belongs to another customer")
	}
	return nil
}

func denied(id uuid.UUID, reason string) error {
	return pkgerrors.Policy("Age verification denied", map[string]any{
		"age_verification_id": id.String(),
		"reason":              reason,
	})
}
