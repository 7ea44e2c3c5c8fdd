package controllers

import (
	"net/http"
	"time"

	"github.com/Uptivity/justsell-pos-sub002/api/responses"
	"github.com/Uptivity/justsell-pos-sub002/api/validators"
	productsvc "github.com/Uptivity/justsell-pos-sub002/internal/products"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
)

type createProductRequest struct {
	SKU            string  `json:"sku" validate:"required,max=64"`
	Name           string  `json:"name" validate:"required,max=200"`
	Category       string  `json:"category" validate:"required,max=100"`
	PriceCents     int64   `json:"price_cents" validate:"gte=0"`
	OnHandQty      int     `json:"on_hand_qty" validate:"gte=0"`
	AgeRestricted  bool    `json:"age_restricted"`
	LotNumber      *string `json:"lot_number,omitempty" validate:"omitempty,max=64"`
	ExpirationDate *string `json:"expiration_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r createProductRequest) toInput() productsvc.CreateInput {
	return productsvc.CreateInput{
		SKU:            validators.SanitizeString(r.SKU, 64),
		Name:           validators.SanitizeString(r.Name, 200),
		Category:       validators.SanitizeString(r.Category, 100),
		PriceCents:     r.PriceCents,
		OnHandQty:      r.OnHandQty,
		AgeRestricted:  r.AgeRestricted,
		LotNumber:      r.LotNumber,
		ExpirationDate: parseOptionalDate(r.ExpirationDate),
	}
}

type updateProductRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Category       *string `json:"category,omitempty" validate:"omitempty,max=100"`
	PriceCents     *int64  `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	OnHandQty      *int    `json:"on_hand_qty,omitempty" validate:"omitempty,gte=0"`
	AgeRestricted  *bool   `json:"age_restricted,omitempty"`
	LotNumber      *string `json:"lot_number,omitempty" validate:"omitempty,max=64"`
	ExpirationDate *string `json:"expiration_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r updateProductRequest) toInput() productsvc.UpdateInput {
	return productsvc.UpdateInput{
		Name:           r.Name,
		Category:       r.Category,
		PriceCents:     r.PriceCents,
		OnHandQty:      r.OnHandQty,
		AgeRestricted:  r.AgeRestricted,
		LotNumber:      r.LotNumber,
		ExpirationDate: parseOptionalDate(r.ExpirationDate),
	}
}

// ListProducts pages the catalog. ?active_only defaults to true for the register.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		identity, err := identityOrUnauthorized(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		result, err := svc.List(r.Context(), productsvc.ListInput{
			StoreID:    identity.StoreID,
			ActiveOnly: validators.ParseQueryBool(r, "active_only", true),
			Category:   validators.SanitizeString(q.Get("category"), 100),
			Search:     validators.SanitizeString(q.Get("q"), 100),
			Params:     validators.ParsePagination(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetProduct returns one catalog entry.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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

		product, err := svc.Get(r.Context(), identity.StoreID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CreateProduct adds a product to the caller's store.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		identity, err := identityOrUnauthorized(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), identity.StoreID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies a partial update.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), identity.StoreID, id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeactivateProduct hides a product from checkout without deleting it.
func DeactivateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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

		product, err := svc.Deactivate(r.Context(), identity.StoreID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// parseOptionalDate expects a value already checked by the datetime validator.
func parseOptionalDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	parsed, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil
	}
	return &parsed
}
