package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/api/middleware"
	"github.com/Uptivity/justsell-pos-sub002/internal/ageverify"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
)

type stubAgeService struct {
	verifyInput   ageverify.VerifyInput
	overrideInput ageverify.OverrideInput
}

func (s *stubAgeService) Verify(ctx context.Context, input ageverify.VerifyInput) (*models.AgeVerificationRecord, error) {
	s.verifyInput = input
	return &models.AgeVerificationRecord{
		ID:          uuid.New(),
		IDType:      input.IDType,
		IDNumber:    input.IDNumber,
		DateOfBirth: input.DateOfBirth.Format("2006-01-02"),
		ComputedAge: 30,
		Outcome:     enums.VerificationOutcomeVerified,
		StoreID:     input.StoreID,
	}, nil
}

func (s *stubAgeService) Override(ctx context.Context, input ageverify.OverrideInput) (*models.AgeVerificationRecord, error) {
	s.overrideInput = input
	if !input.Role.HasPermission(enums.PermissionAgeVerificationOverride) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "manager approval required to override age verification")
	}
	original := input.VerificationID
	return &models.AgeVerificationRecord{ID: uuid.New(), Outcome: enums.VerificationOutcomeOverridden, OverrideOfID: &original}, nil
}

func (s *stubAgeService) Get(ctx context.Context, storeID, id uuid.UUID) (*models.AgeVerificationRecord, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "age verification not found")
}

func (s *stubAgeService) CheckCart(ctx context.Context, input ageverify.CartCheck) error {
	return nil
}

func TestVerifyAgeMasksDocumentNumber(t *testing.T) {
	svc := &stubAgeService{}
	identity := cashierIdentity()
	body := map[string]any{
		"id_type":            "drivers_license",
		"id_number":          "D1234-5678",
		"date_of_birth":      "1990-04-12",
		"id_expiration_date": "2030-01-01",
	}
	rec := httptest.NewRecorder()
	VerifyAge(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/api/age-verifications", body, &identity, nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.verifyInput.IDType != enums.IDTypeDriversLicense {
		t.Fatalf("unexpected id type %s", svc.verifyInput.IDType)
	}
	if !svc.verifyInput.DateOfBirth.Equal(time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected dob %s", svc.verifyInput.DateOfBirth)
	}
	if svc.verifyInput.StoreID != identity.StoreID || svc.verifyInput.EmployeeID != identity.EmployeeID {
		t.Fatalf("identity not propagated")
	}

	var dto ageverify.RecordDTO
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.IDNumberLast4 != "5678" {
		t.Fatalf("expected masked number, got %q", dto.IDNumberLast4)
	}
	if body := rec.Body.String(); strings.Contains(body, "D1234") || strings.Contains(body, "1990-04-12") {
		t.Fatalf("response leaked document data: %s", rec.Body.String())
	}
}

func TestVerifyAgeRejectsMalformedDates(t *testing.T) {
	identity := cashierIdentity()
	body := map[string]any{
		"id_type":            "PASSPORT",
		"id_number":          "X1",
		"date_of_birth":      "04/12/1990",
		"id_expiration_date": "2030-01-01",
	}
	rec := httptest.NewRecorder()
	VerifyAge(&stubAgeService{}, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/api/age-verifications", body, &identity, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error.Details["date_of_birth"] == nil {
		t.Fatalf("expected field detail, got %v", env.Error.Details)
	}
}

func TestOverrideAgeVerificationPassesRole(t *testing.T) {
	svc := &stubAgeService{}
	id := uuid.New()
	params := map[string]string{"id": id.String()}

	cashier := cashierIdentity()
	rec := httptest.NewRecorder()
	OverrideAgeVerification(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/o", map[string]any{"reason": "manager checked"}, &cashier, params))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier got %d", rec.Code)
	}

	manager := middleware.Identity{EmployeeID: uuid.New(), StoreID: uuid.New(), Role: enums.EmployeeRoleManager}
	rec = httptest.NewRecorder()
	OverrideAgeVerification(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/o", map[string]any{"reason": "manager checked"}, &manager, params))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.overrideInput.VerificationID != id || svc.overrideInput.Reason != "manager checked" {
		t.Fatalf("unexpected override input %+v", svc.overrideInput)
	}
}

func TestGetAgeVerificationNotFound(t *testing.T) {
	identity := cashierIdentity()
	rec := httptest.NewRecorder()
	GetAgeVerification(&stubAgeService{}, testLogger()).ServeHTTP(rec, newRequest(http.MethodGet, "/g", nil, &identity, map[string]string{"id": uuid.NewString()}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
