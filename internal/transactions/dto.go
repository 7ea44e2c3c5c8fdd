package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

// LineItemDTO is the API view of a sold line.
type LineItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ProductSKU     string    `json:"product_sku"`
	AgeRestricted  bool      `json:"age_restricted"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// TransactionDTO is the API view of a completed sale.
type TransactionDTO struct {
	ID                       uuid.UUID           `json:"id"`
	ReceiptNumber            string              `json:"receipt_number"`
	StoreID                  uuid.UUID           `json:"store_id"`
	CustomerID               *uuid.UUID          `json:"customer_id,omitempty"`
	EmployeeID               uuid.UUID           `json:"employee_id"`
	SubtotalCents            int64               `json:"subtotal_cents"`
	TaxRate                  decimal.Decimal     `json:"tax_rate"`
	TaxCents                 int64               `json:"tax_cents"`
	TotalCents               int64               `json:"total_cents"`
	PaymentMethod            enums.PaymentMethod `json:"payment_method"`
	PaymentStatus            enums.PaymentStatus `json:"payment_status"`
	PaymentReference         *string             `json:"payment_reference,omitempty"`
	CashTenderedCents        *int64              `json:"cash_tendered_cents,omitempty"`
	ChangeCents              *int64              `json:"change_cents,omitempty"`
	AgeVerificationRequired  bool                `json:"age_verification_required"`
	AgeVerificationCompleted bool                `json:"age_verification_completed"`
	AgeVerificationID        *uuid.UUID          `json:"age_verification_id,omitempty"`
	LoyaltyPointsEarned      int64               `json:"loyalty_points_earned"`
	LoyaltyPointsRedeemed    int64               `json:"loyalty_points_redeemed"`
	LoyaltyBalanceAfter      *int64              `json:"loyalty_balance_after,omitempty"`
	LineItems                []LineItemDTO       `json:"line_items"`
	CreatedAt                time.Time           `json:"created_at"`
}

// ListResult is one page of transactions.
type ListResult struct {
	Transactions []TransactionDTO `json:"transactions"`
	Meta         pagination.Meta  `json:"pagination"`
}

// FromModel maps a transaction row into a DTO.
func FromModel(m *models.Transaction) *TransactionDTO {
	if m == nil {
		return nil
	}
	items := make([]LineItemDTO, 0, len(m.LineItems))
	for _, li := range m.LineItems {
		items = append(items, LineItemDTO{
			ID:             li.ID,
			ProductID:      li.ProductID,
			ProductName:    li.ProductName,
			ProductSKU:     li.ProductSKU,
			AgeRestricted:  li.AgeRestricted,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
			LineTotalCents: li.LineTotalCents,
		})
	}
	return &TransactionDTO{
		ID:                       m.ID,
		ReceiptNumber:            m.ReceiptNumber,
		StoreID:                  m.StoreID,
		CustomerID:               m.CustomerID,
		EmployeeID:               m.EmployeeID,
		SubtotalCents:            m.SubtotalCents,
		TaxRate:                  m.TaxRate,
		TaxCents:                 m.TaxCents,
		TotalCents:               m.TotalCents,
		PaymentMethod:            m.PaymentMethod,
		PaymentStatus:            m.PaymentStatus,
		PaymentReference:         m.PaymentReference,
		CashTenderedCents:        m.CashTenderedCents,
		ChangeCents:              m.ChangeCents,
		AgeVerificationRequired:  m.AgeVerificationRequired,
		AgeVerificationCompleted: m.AgeVerificationCompleted,
		AgeVerificationID:        m.AgeVerificationID,
		LoyaltyPointsEarned:      m.LoyaltyPointsEarned,
		LoyaltyPointsRedeemed:    m.LoyaltyPointsRedeemed,
		LoyaltyBalanceAfter:      m.LoyaltyBalanceAfter,
		LineItems:                items,
		CreatedAt:                m.CreatedAt,
	}
}
