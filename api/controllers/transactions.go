package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/api/responses"
	"github.com/Uptivity/justsell-pos-sub002/api/validators"
	"github.com/Uptivity/justsell-pos-sub002/internal/inventory"
	"github.com/Uptivity/justsell-pos-sub002/internal/transactions"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
)

type cartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type createTransactionRequest struct {
	Items                    []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod            string            `json:"payment_method"`
	CashTenderedCents        *int64            `json:"cash_tendered_cents,omitempty" validate:"omitempty,gte=0"`
	CustomerID               *string           `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	AgeVerificationCompleted bool              `json:"age_verification_completed"`
	AgeVerificationID        *string           `json:"age_verification_id,omitempty" validate:"omitempty,uuid"`
	LoyaltyPointsRedeemed    int64             `json:"loyalty_points_redeemed" validate:"gte=0"`
}

func (r createTransactionRequest) toInput() (transactions.CreateInput, error) {
	// the tender is checked by the service, after the cart's age gate
	input := transactions.CreateInput{
		PaymentMethod:            enums.PaymentMethod(strings.ToUpper(strings.TrimSpace(r.PaymentMethod))),
		CashTenderedCents:        r.CashTenderedCents,
		AgeVerificationCompleted: r.AgeVerificationCompleted,
		LoyaltyPointsRedeemed:    r.LoyaltyPointsRedeemed,
	}
	var err error
	for _, item := range r.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return transactions.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id")
		}
		input.Items = append(input.Items, inventory.CartLine{ProductID: id, Quantity: item.Quantity})
	}
	if input.CustomerID, err = optionalUUID(r.CustomerID, "customer_id"); err != nil {
		return transactions.CreateInput{}, err
	}
	if input.AgeVerificationID, err = optionalUUID(r.AgeVerificationID, "age_verification_id"); err != nil {
		return transactions.CreateInput{}, err
	}
	return input, nil
}

type printReceiptRequest struct {
	Format string `json:"format,omitempty" validate:"omitempty,oneof=text html"`
	Copies int    `json:"copies,omitempty" validate:"omitempty,gte=1,lte=5"`
}

// CreateTransaction runs checkout for the authenticated cashier.
func CreateTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		identity, err := identityOrUnauthorized(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.StoreID = identity.StoreID
		input.EmployeeID = identity.EmployeeID

		txn, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

// ListTransactions pages the store's sales, newest first.
func ListTransactions(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		identity, err := identityOrUnauthorized(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), identity.StoreID, validators.ParsePagination(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetTransaction returns one sale with its line items.
func GetTransaction(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
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

		txn, err := svc.Get(r.Context(), identity.StoreID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, txn)
	}
}

// GetReceipt renders a sale's receipt. ?format selects json (default), text or html.
func GetReceipt(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
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
		format := enums.ReceiptFormatJSON
		if raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))); raw != "" {
			if format, err = enums.ParseReceiptFormat(raw); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "format must be text, html or json"))
				return
			}
		}

		receipt, err := svc.Receipt(r.Context(), identity.StoreID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		switch format {
		case enums.ReceiptFormatText:
			responses.WriteText(w, "text/plain; charset=utf-8", receipt.Rendered.Text)
		case enums.ReceiptFormatHTML:
			responses.WriteText(w, "text/html; charset=utf-8", receipt.Rendered.HTML)
		default:
			responses.WriteSuccess(w, map[string]any{
				"receipt": receipt.Data,
				"text":    receipt.Rendered.Text,
			})
		}
	}
}

// PrintReceipt sends a receipt to the store printer and records the print.
func PrintReceipt(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
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

		var payload printReceiptRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Print(r.Context(), transactions.PrintInput{
			StoreID:       identity.StoreID,
			EmployeeID:    identity.EmployeeID,
			TransactionID: id,
			Format:        enums.ReceiptFormat(payload.Format),
			Copies:        payload.Copies,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func optionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field).WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}
