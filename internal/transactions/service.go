// Package transactions runs checkout: it validates a cart, then commits stock, the sale, its
// line items and the customer's loyalty balance in one database transaction.
package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/internal/ageverify"
	"github.com/Uptivity/justsell-pos-sub002/internal/customers"
	"github.com/Uptivity/justsell-pos-sub002/internal/inventory"
	"github.com/Uptivity/justsell-pos-sub002/internal/pricing"
	"github.com/Uptivity/justsell-pos-sub002/internal/receipts"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
	"github.com/Uptivity/justsell-pos-sub002/pkg/metrics"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

const (
	maxCommitAttempts     = 3
	persistFailureMessage = "Failed to process transaction"
	maxPrintCopies        = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ageGate interface {
	CheckCart(ctx context.Context, input ageverify.CartCheck) error
}

type storeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type employeeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
}

// Service exposes checkout and transaction history.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*TransactionDTO, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*TransactionDTO, error)
	List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ListResult, error)
	Receipt(ctx context.Context, storeID, id uuid.UUID) (*ReceiptResult, error)
	Print(ctx context.Context, input PrintInput) (*PrintResult, error)
}

// CreateInput is a checkout request from an authenticated employee.
type CreateInput struct {
	StoreID                  uuid.UUID
	EmployeeID               uuid.UUID
	CustomerID               *uuid.UUID
	Items                    []inventory.CartLine
	PaymentMethod            enums.PaymentMethod
	CashTenderedCents        *int64
	AgeVerificationCompleted bool
	AgeVerificationID        *uuid.UUID
	LoyaltyPointsRedeemed    int64
}

// PrintInput requests printed copies of a receipt.
type PrintInput struct {
	StoreID       uuid.UUID
	EmployeeID    uuid.UUID
	TransactionID uuid.UUID
	Format        enums.ReceiptFormat
	Copies        int
}

// PrintResult acknowledges a print request.
type PrintResult struct {
	PrintID       uuid.UUID           `json:"print_id"`
	ReceiptNumber string              `json:"receipt_number"`
	Format        enums.ReceiptFormat `json:"format"`
	Copies        int                 `json:"copies"`
	Reprint       bool                `json:"reprint"`
	PrintedAt     time.Time           `json:"printed_at"`
}

// ReceiptResult carries both the receipt data and its renderings.
type ReceiptResult struct {
	Data     receipts.Input
	Rendered receipts.Receipt
}

// ServiceParams bundles the checkout dependencies.
type ServiceParams struct {
	DB            txRunner
	Repo          *Repository
	Guard         *inventory.Guard
	AgeGate       ageGate
	Customers     *customers.Repository
	Stores        storeReader
	Employees     employeeReader
	TaxRates      *pricing.TaxRates
	Tiers         *pricing.TierTable
	Processor     PaymentProcessor
	Printer       Printer
	Formatter     *receipts.Formatter
	Numberer      ReceiptNumberer
	Metrics       *metrics.CheckoutMetrics
	Logger        *logger.Logger
	ReceiptFooter string
}

type service struct {
	db        txRunner
	repo      *Repository
	guard     *inventory.Guard
	ageGate   ageGate
	customers *customers.Repository
	stores    storeReader
	employees employeeReader
	taxRates  *pricing.TaxRates
	tiers     *pricing.TierTable
	processor PaymentProcessor
	printer   Printer
	formatter *receipts.Formatter
	numberer  ReceiptNumberer
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
	footer    string
	clock     func() time.Time
}

// NewService constructs the checkout service.
func NewService(p ServiceParams) (Service, error) {
	switch {
	case p.DB == nil:
		return nil, fmt.Errorf("db client required")
	case p.Repo == nil:
		return nil, fmt.Errorf("transaction repository required")
	case p.Guard == nil:
		return nil, fmt.Errorf("inventory guard required")
	case p.AgeGate == nil:
		return nil, fmt.Errorf("age verification gate required")
	case p.Customers == nil:
		return nil, fmt.Errorf("customer repository required")
	case p.Stores == nil:
		return nil, fmt.Errorf("store repository required")
	case p.Employees == nil:
		return nil, fmt.Errorf("employee repository required")
	case p.TaxRates == nil:
		return nil, fmt.Errorf("tax rates required")
	case p.Tiers == nil:
		return nil, fmt.Errorf("loyalty tiers required")
	case p.Processor == nil:
		return nil, fmt.Errorf("payment processor required")
	case p.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		db:        p.DB,
		repo:      p.Repo,
		guard:     p.Guard,
		ageGate:   p.AgeGate,
		customers: p.Customers,
		stores:    p.Stores,
		employees: p.Employees,
		taxRates:  p.TaxRates,
		tiers:     p.Tiers,
		processor: p.Processor,
		printer:   p.Printer,
		formatter: p.Formatter,
		numberer:  p.Numberer,
		metrics:   p.Metrics,
		logg:      p.Logger,
		footer:    p.ReceiptFooter,
		clock:     func() time.Time { return time.Now().UTC() },
	}
	if svc.printer == nil {
		svc.printer = LogPrinter{Logg: p.Logger}
	}
	if svc.formatter == nil {
		svc.formatter = receipts.NewFormatter(receipts.DefaultItemWidth)
	}
	if svc.numberer == nil {
		svc.numberer = SequenceNumberer{}
	}
	return svc, nil
}

// checkout is a validated cart ready to commit.
type checkout struct {
	input       CreateInput
	rate        decimal.Decimal
	totals      pricing.Totals
	ageRequired bool
	paymentRef  *string
}

func (s *service) Create(ctx context.Context, input CreateInput) (*TransactionDTO, error) {
	started := s.clock()

	plan, err := s.validate(ctx, input)
	if err != nil {
		s.metrics.ObserveRejected(string(pkgerrors.As(err).Code()), s.clock().Sub(started))
		return nil, err
	}

	txn, err := s.commitWithRetry(ctx, plan)
	if err != nil {
		s.metrics.ObserveFailed(string(pkgerrors.As(err).Code()), s.clock().Sub(started))
		return nil, err
	}

	s.metrics.ObserveCommitted(txn.PaymentMethod.String(), txn.TotalCents, s.clock().Sub(started))
	logCtx := s.logg.WithReceipt(ctx, txn.ReceiptNumber)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"transaction_id": txn.ID.String(),
		"total_cents":    txn.TotalCents,
		"payment_method": txn.PaymentMethod.String(),
		"line_count":     len(txn.LineItems),
	})
	s.logg.Info(logCtx, "transaction.committed")
	return FromModel(txn), nil
}

// validate runs every check that needs no writes, in order: identity, cart shape, product
// lookup, age gate, tender, stock, pricing, loyalty redemption, payment authorization.
func (s *service) validate(ctx context.Context, input CreateInput) (*checkout, error) {
	if input.StoreID == uuid.Nil || input.EmployeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}

	resolved, err := s.guard.Resolve(ctx, input.StoreID, input.Items)
	if err != nil {
		return nil, err
	}
	ageRequired := ageverify.RequiresVerification(resolved)
	if err := s.ageGate.CheckCart(ctx, ageverify.CartCheck{
		StoreID:        input.StoreID,
		CustomerID:     input.CustomerID,
		Required:       ageRequired,
		Completed:      input.AgeVerificationCompleted,
		VerificationID: input.AgeVerificationID,
	}); err != nil {
		return nil, err
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment_method")
	}
	if err := inventory.EnsureStock(resolved); err != nil {
		return nil, err
	}

	store, err := s.stores.FindByID(ctx, input.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	rate := s.taxRates.Rate(store.TaxJurisdiction)

	totals, err := pricing.Compute(pricingLines(resolved), rate, paymentInput(input))
	if err != nil {
		return nil, err
	}

	if input.LoyaltyPointsRedeemed != 0 && input.CustomerID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required to redeem loyalty points")
	}
	if input.CustomerID != nil {
		customer, err := s.customers.FindByID(ctx, *input.CustomerID, false)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
		}
		if err := pricing.ValidateRedemption(input.LoyaltyPointsRedeemed, customer.LoyaltyPoints); err != nil {
			return nil, err
		}
	}

	plan := &checkout{input: input, rate: rate, totals: totals, ageRequired: ageRequired}
	if input.PaymentMethod.RequiresAuthorization() {
		auth, err := s.processor.Authorize(ctx, PaymentRequest{
			StoreID:     input.StoreID,
			Method:      input.PaymentMethod,
			AmountCents: totals.TotalCents,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment processor unavailable")
		}
		if !auth.Approved {
			return nil, pkgerrors.Policy("Payment declined", map[string]any{"reason": auth.Reason})
		}
		ref := auth.Reference
		plan.paymentRef = &ref
	}
	return plan, nil
}

// commitWithRetry reruns the whole atomic unit when the receipt number collides with one
// already issued. Every other failure surfaces immediately.
func (s *service) commitWithRetry(ctx context.Context, plan *checkout) (*models.Transaction, error) {
	for attempt := 1; ; attempt++ {
		txn, err := s.commit(ctx, plan)
		if err == nil {
			return txn, nil
		}
		if isReceiptCollision(err) && attempt < maxCommitAttempts && ctx.Err() == nil {
			s.metrics.IncReceiptRetry()
			s.logg.Warn(s.logg.WithField(ctx, "attempt", attempt), "transaction.receipt_collision")
			continue
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeInternal {
			return nil, err
		}
		return nil, pkgerrors.Internal(err, persistFailureMessage)
	}
}

func (s *service) commit(ctx context.Context, plan *checkout) (*models.Transaction, error) {
	in := plan.input
	var out *models.Transaction
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		guard := s.guard.WithTx(tx)
		locked, err := guard.Check(ctx, in.StoreID, in.Items)
		if err != nil {
			return err
		}
		totals, err := pricing.Compute(pricingLines(locked), plan.rate, paymentInput(in))
		if err != nil {
			return err
		}
		if totals.TotalCents != plan.totals.TotalCents {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "prices changed during checkout, please retry")
		}
		if err := guard.Decrement(ctx, locked); err != nil {
			return err
		}

		now := s.clock()
		number, err := s.numberer.Next(ctx, tx, now)
		if err != nil {
			return err
		}

		var (
			earned int64
			snap   customerSnapshot
		)
		if in.CustomerID != nil {
			earned = pricing.LoyaltyEarned(totals.TotalCents)
			snap, err = s.applyLoyalty(ctx, tx, *in.CustomerID, earned, in.LoyaltyPointsRedeemed, totals.TotalCents)
			if err != nil {
				return err
			}
		}
		txn := &models.Transaction{
			ReceiptNumber:            number,
			StoreID:                  in.StoreID,
			CustomerID:               in.CustomerID,
			EmployeeID:               in.EmployeeID,
			SubtotalCents:            totals.SubtotalCents,
			TaxCents:                 totals.TaxCents,
			TotalCents:               totals.TotalCents,
			TaxRate:                  totals.TaxRate,
			PaymentMethod:            in.PaymentMethod,
			PaymentStatus:            enums.PaymentStatusCompleted,
			PaymentReference:         plan.paymentRef,
			CashTenderedCents:        totals.CashTenderedCents,
			ChangeCents:              totals.ChangeCents,
			AgeVerificationRequired:  plan.ageRequired,
			AgeVerificationCompleted: in.AgeVerificationCompleted,
			AgeVerificationID:        in.AgeVerificationID,
			LoyaltyPointsEarned:      earned,
			LoyaltyPointsRedeemed:    in.LoyaltyPointsRedeemed,
			CustomerName:             snap.name,
			LoyaltyBalanceAfter:      snap.balance,
			LineItems:                lineItems(locked, totals.LineTotals, now),
			CreatedAt:                now,
			UpdatedAt:                now,
		}
		if err := s.repo.WithTx(tx).Insert(ctx, txn); err != nil {
			return err
		}
		out = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// customerSnapshot is the customer state printed on this sale's receipt.
type customerSnapshot struct {
	name    *string
	balance *int64
}

func (s *service) applyLoyalty(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, earned, redeemed, totalCents int64) (customerSnapshot, error) {
	repo := s.customers.WithTx(tx)
	customer, err := repo.FindByID(ctx, customerID, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customerSnapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return customerSnapshot{}, err
	}
	if err := pricing.ValidateRedemption(redeemed, customer.LoyaltyPoints); err != nil {
		return customerSnapshot{}, err
	}
	points := customer.LoyaltyPoints + earned - redeemed
	spend := customer.LifetimeSpendCents + totalCents
	if err := repo.UpdateLoyalty(ctx, customerID, points, spend, s.tiers.Resolve(spend)); err != nil {
		return customerSnapshot{}, err
	}
	name := customers.DisplayName(customer)
	return customerSnapshot{name: &name, balance: &points}, nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.load(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(txn), nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ListResult, error) {
	params = params.Normalize()
	rows, total, err := s.repo.List(ctx, storeID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transactions")
	}
	out := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ListResult{Transactions: out, Meta: pagination.MetaFor(params, total)}, nil
}

func (s *service) Receipt(ctx context.Context, storeID, id uuid.UUID) (*ReceiptResult, error) {
	txn, err := s.load(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	data, err := s.receiptInput(ctx, txn)
	if err != nil {
		return nil, err
	}
	rendered, err := s.formatter.Format(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render receipt")
	}
	return &ReceiptResult{Data: data, Rendered: rendered}, nil
}

func (s *service) Print(ctx context.Context, input PrintInput) (*PrintResult, error) {
	format := input.Format
	if format == "" {
		format = enums.ReceiptFormatText
	}
	if format != enums.ReceiptFormatText && format != enums.ReceiptFormatHTML {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "format must be text or html")
	}
	copies := input.Copies
	if copies == 0 {
		copies = 1
	}
	if copies < 1 || copies > maxPrintCopies {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("copies must be between 1 and %d", maxPrintCopies))
	}

	receipt, err := s.Receipt(ctx, input.StoreID, input.TransactionID)
	if err != nil {
		return nil, err
	}
	body := receipt.Rendered.Text
	if format == enums.ReceiptFormatHTML {
		body = receipt.Rendered.HTML
	}
	prior, err := s.repo.CountPrints(ctx, input.TransactionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count receipt prints")
	}
	if err := s.printer.Print(ctx, PrintJob{
		ReceiptNumber: receipt.Data.ReceiptNumber,
		Format:        format,
		Copies:        copies,
		Reprint:       prior > 0,
		Body:          body,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "printer unavailable")
	}

	record := &models.ReceiptPrint{
		TransactionID: input.TransactionID,
		EmployeeID:    input.EmployeeID,
		Format:        format,
		Copies:        copies,
		PrintedAt:     s.clock(),
	}
	if err := s.repo.InsertPrint(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record receipt print")
	}
	return &PrintResult{
		PrintID:       record.ID,
		ReceiptNumber: receipt.Data.ReceiptNumber,
		Format:        format,
		Copies:        copies,
		Reprint:       prior > 0,
		PrintedAt:     record.PrintedAt,
	}, nil
}

func (s *service) load(ctx context.Context, storeID, id uuid.UUID) (*models.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load transaction")
	}
	return txn, nil
}

func pricingLines(lines []inventory.ResolvedLine) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, pricing.Line{UnitPriceCents: line.Product.PriceCents, Quantity: line.Quantity})
	}
	return out
}

func paymentInput(in CreateInput) pricing.PaymentInput {
	return pricing.PaymentInput{Method: in.PaymentMethod, CashTenderedCents: in.CashTenderedCents}
}

func lineItems(lines []inventory.ResolvedLine, totals []int64, at time.Time) []models.LineItem {
	items := make([]models.LineItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, models.LineItem{
			ProductID:      line.Product.ID,
			ProductName:    line.Product.Name,
			ProductSKU:     line.Product.SKU,
			AgeRestricted:  line.Product.AgeRestricted,
			Quantity:       line.Quantity,
			UnitPriceCents: line.Product.PriceCents,
			LineTotalCents: totals[i],
			// FindByID orders line items by created_at
			CreatedAt: at.Add(time.Duration(i) * time.Microsecond),
		})
	}
	return items
}
