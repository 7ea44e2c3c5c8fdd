package transactions

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/internal/employees"
	"github.com/Uptivity/justsell-pos-sub002/internal/receipts"
	"github.com/Uptivity/justsell-pos-sub002/internal/stores"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
)

// receiptInput assembles everything printed for txn from the store, the cashier and the sale's
// own snapshot. The loyalty section appears only when a customer is attached.
func (s *service) receiptInput(ctx context.Context, txn *models.Transaction) (receipts.Input, error) {
	store, err := s.stores.FindByID(ctx, txn.StoreID)
	if err != nil {
		return receipts.Input{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}

	in := receipts.Input{
		Store: receipts.Store{
			Name:         store.Name,
			AddressLines: stores.AddressLines(store),
		},
		ReceiptNumber:     txn.ReceiptNumber,
		CreatedAt:         txn.CreatedAt,
		SubtotalCents:     txn.SubtotalCents,
		TaxRate:           txn.TaxRate,
		TaxCents:          txn.TaxCents,
		TotalCents:        txn.TotalCents,
		PaymentMethod:     txn.PaymentMethod,
		CashTenderedCents: txn.CashTenderedCents,
		ChangeCents:       txn.ChangeCents,
		Footer:            s.footer,
	}
	if store.Phone != nil {
		in.Store.Phone = *store.Phone
	}
	for _, li := range txn.LineItems {
		in.Lines = append(in.Lines, receipts.Line{
			Name:           li.ProductName,
			SKU:            li.ProductSKU,
			Quantity:       li.Quantity,
			UnitPriceCents: li.UnitPriceCents,
			LineTotalCents: li.LineTotalCents,
		})
	}

	if employee, err := s.employees.FindByID(ctx, txn.EmployeeID); err == nil {
		in.CashierName = employees.DisplayName(employee)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return receipts.Input{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load employee")
	}

	if txn.CustomerID != nil {
		if txn.CustomerName != nil {
			in.CustomerName = *txn.CustomerName
		}
		loyalty := &receipts.Loyalty{
			Earned:   txn.LoyaltyPointsEarned,
			Redeemed: txn.LoyaltyPointsRedeemed,
		}
		if txn.LoyaltyBalanceAfter != nil {
			loyalty.Balance = *txn.LoyaltyBalanceAfter
		}
		in.Loyalty = loyalty
	}
	return in, nil
}
