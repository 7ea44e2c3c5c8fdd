// Package pricing computes sale totals, change and loyalty accruals. All amounts are integer
// cents; rates are decimals.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/money"
)

// Line is one priced cart entry.
type Line struct {
	UnitPriceCents int64
	Quantity       int
}

// PaymentInput carries the tender details that affect totals.
type PaymentInput struct {
	Method            enums.PaymentMethod
	CashTenderedCents *int64
}

// Totals is the computed breakdown of a sale.
type Totals struct {
	LineTotals        []int64
	SubtotalCents     int64
	TaxCents          int64
	TotalCents        int64
	TaxRate           decimal.Decimal
	CashTenderedCents *int64
	ChangeCents       *int64
}

// Compute prices every line, applies rate to the subtotal rounding half-up to the cent, and
// validates cash tender. Non-cash tenders never carry tendered or change amounts.
func Compute(lines []Line, rate decimal.Decimal, payment PaymentInput) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "tax rate out of range")
	}
	if !payment.Method.IsValid() {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	totals := Totals{
		LineTotals: make([]int64, len(lines)),
		TaxRate:    rate,
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if line.UnitPriceCents < 0 {
			return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
		}
		lineTotal := line.UnitPriceCents * int64(line.Quantity)
		totals.LineTotals[i] = lineTotal
		totals.SubtotalCents += lineTotal
	}
	totals.TaxCents = int64(money.Cents(totals.SubtotalCents).MulRate(rate))
	totals.TotalCents = totals.SubtotalCents + totals.TaxCents

	if payment.Method != enums.PaymentMethodCash {
		return totals, nil
	}
	if payment.CashTenderedCents == nil {
		return Totals{}, pkgerrors.New(pkgerrors.CodeValidation, "cash_tendered is required for CASH payments")
	}
	tendered := *payment.CashTenderedCents
	if tendered < totals.TotalCents {
		return Totals{}, pkgerrors.Policy("Insufficient cash tendered", map[string]any{
			"total":         money.Cents(totals.TotalCents).String(),
			"cash_tendered": money.Cents(tendered).String(),
		})
	}
	change := tendered - totals.TotalCents
	totals.CashTenderedCents = &tendered
	totals.ChangeCents = &change
	return totals, nil
}

// LoyaltyEarned awards one point per whole currency unit of the sale total.
func LoyaltyEarned(totalCents int64) int64 {
	if totalCents <= 0 {
		return 0
	}
	return money.Cents(totalCents).WholeUnits()
}

// ValidateRedemption rejects negative requests and requests above the customer's balance.
func ValidateRedemption(requested, balance int64) error {
	if requested < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "loyalty_points_redeemed cannot be negative")
	}
	if requested > balance {
		return pkgerrors.Policy("Insufficient loyalty points", map[string]any{
			"available": balance,
			"requested": requested,
		})
	}
	return nil
}
