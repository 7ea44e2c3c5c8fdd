package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Uptivity/justsell-pos-sub002/api/responses"
	"github.com/Uptivity/justsell-pos-sub002/api/validators"
	"github.com/Uptivity/justsell-pos-sub002/internal/ageverify"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
)

const dateLayout = "2006-01-02"

type verifyAgeRequest struct {
	IDType           string  `json:"id_type" validate:"required"`
	IDNumber         string  `json:"id_number" validate:"required,max=64"`
	DateOfBirth      string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	IDExpirationDate string  `json:"id_expiration_date" validate:"required,datetime=2006-01-02"`
	CustomerID       *string `json:"customer_id,omitempty" validate:"omitempty,uuid"`
}

type overrideAgeRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// VerifyAge records one ID check at the counter. Denied checks are still recorded and
// returned with 201 so the register can offer a manager override.
func VerifyAge(svc ageverify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "age verification service unavailable"))
			return
		}
		identity, err := identityOrUnauthorized(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload verifyAgeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		idType, err := enums.ParseIDType(strings.ToUpper(strings.TrimSpace(payload.IDType)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id_type"))
			return
		}
		dob, _ := time.Parse(dateLayout, payload.DateOfBirth)
		expires, _ := time.Parse(dateLayout, payload.IDExpirationDate)
		customerID, err := optionalUUID(payload.CustomerID, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Verify(r.Context(), ageverify.VerifyInput{
			StoreID:          identity.StoreID,
			EmployeeID:       identity.EmployeeID,
			CustomerID:       customerID,
			IDType:           idType,
			IDNumber:         payload.IDNumber,
			DateOfBirth:      dob,
			IDExpirationDate: expires,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ageverify.FromModel(record))
	}
}

// GetAgeVerification returns a verification recorded at the caller's store.
func GetAgeVerification(svc ageverify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "age verification service unavailable"))
			return
		}
		identity, err := identityOrUnauthorized(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), identity.StoreID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ageverify.FromModel(record))
	}
}

// OverrideAgeVerification lets a manager approve an override-eligible denial.
func OverrideAgeVerification(svc ageverify.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "age verification service unavailable"))
			return
		}
		identity, err := identityOrUnauthorized(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload overrideAgeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Override(r.Context(), ageverify.OverrideInput{
			VerificationID: id,
			StoreID:        identity.StoreID,
			EmployeeID:     identity.EmployeeID,
			Role:           identity.Role,
			Reason:         payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, ageverify.FromModel(record))
	}
}
