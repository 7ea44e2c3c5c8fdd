package transactions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/internal/ageverify"
	"github.com/Uptivity/justsell-pos-sub002/internal/customers"
	"github.com/Uptivity/justsell-pos-sub002/internal/employees"
	"github.com/Uptivity/justsell-pos-sub002/internal/inventory"
	"github.com/Uptivity/justsell-pos-sub002/internal/pricing"
	"github.com/Uptivity/justsell-pos-sub002/internal/receipts"
	"github.com/Uptivity/justsell-pos-sub002/internal/stores"
	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db/dbtest"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
	"github.com/Uptivity/justsell-pos-sub002/pkg/metrics"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

var receiptPattern = regexp.MustCompile(`^R\d{12}\d{4}$`)

type recordingPrinter struct {
	jobs []PrintJob
}

func (p *recordingPrinter) Print(ctx context.Context, job PrintJob) error {
	p.jobs = append(p.jobs, job)
	return nil
}

type scriptedNumberer struct {
	numbers []string
	calls   int
}

func (n *scriptedNumberer) Next(ctx context.Context, tx *gorm.DB, at time.Time) (string, error) {
	idx := n.calls
	if idx >= len(n.numbers) {
		idx = len(n.numbers) - 1
	}
	n.calls++
	return n.numbers[idx], nil
}

type failingNumberer struct {
	err error
}

func (n failingNumberer) Next(context.Context, *gorm.DB, time.Time) (string, error) {
	return "", n.err
}

type declineProcessor struct{}

func (declineProcessor) Authorize(ctx context.Context, req PaymentRequest) (Authorization, error) {
	return Authorization{Approved: false, Reason: "insufficient funds"}, nil
}

type fixture struct {
	svc       *service
	conn      *gorm.DB
	store     *models.Store
	cashier   *models.Employee
	verifier  ageverify.Service
	customers *customers.Repository
	printer   *recordingPrinter
	registry  *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	conn := client.DB()
	cipher := dbtest.Cipher(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	store := dbtest.Store(t, conn, func(s *models.Store) { s.TaxJurisdiction = "TX" })
	cashier := dbtest.Employee(t, conn, store.ID, func(e *models.Employee) { e.FirstName = "Casey"; e.LastName = "Jones" })

	ageRepo, err := ageverify.NewRepository(conn, cipher)
	require.NoError(t, err)
	verifier, err := ageverify.NewService(ageRepo, logg)
	require.NoError(t, err)
	customerRepo, err := customers.NewRepository(conn, cipher)
	require.NoError(t, err)
	guard, err := inventory.NewGuard(inventory.NewRepository(conn))
	require.NoError(t, err)
	taxRates, err := pricing.NewTaxRates(config.TaxConfig{DefaultRate: "0", JurisdictionRates: "TX:0.08"})
	require.NoError(t, err)
	tiers, err := pricing.NewTierTable([]config.TierThreshold{{Name: "BRONZE", MinCents: 0}, {Name: "SILVER", MinCents: 5000}})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	printer := &recordingPrinter{}
	svc, err := NewService(ServiceParams{
		DB:            client,
		Repo:          NewRepository(conn),
		Guard:         guard,
		AgeGate:       verifier,
		Customers:     customerRepo,
		Stores:        stores.NewRepository(conn),
		Employees:     employees.NewRepository(conn),
		TaxRates:      taxRates,
		Tiers:         tiers,
		Processor:     StubProcessor{},
		Printer:       printer,
		Formatter:     receipts.NewFormatter(20),
		Metrics:       metrics.NewCheckoutMetrics(registry),
		Logger:        logg,
		ReceiptFooter: "Thank you for shopping with us!",
	})
	require.NoError(t, err)

	return &fixture{
		svc:       svc.(*service),
		conn:      conn,
		store:     store,
		cashier:   cashier,
		verifier:  verifier,
		customers: customerRepo,
		printer:   printer,
		registry:  registry,
	}
}

func (f *fixture) product(t *testing.T, name string, price int64, qty int, restricted bool) *models.Product {
	t.Helper()
	return dbtest.Product(t, f.conn, f.store.ID, func(p *models.Product) {
		p.Name = name
		p.PriceCents = price
		p.OnHandQty = qty
		p.AgeRestricted = restricted
	})
}

func (f *fixture) customer(t *testing.T, points int64) *models.Customer {
	t.Helper()
	c := &models.Customer{FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, f.customers.Create(context.Background(), c))
	if points > 0 {
		require.NoError(t, f.customers.UpdateLoyalty(context.Background(), c.ID, points, 0, "BRONZE"))
	}
	return c
}

func (f *fixture) onHand(t *testing.T, id uuid.UUID) int {
	t.Helper()
	qty, err := inventory.NewRepository(f.conn).OnHand(context.Background(), id)
	require.NoError(t, err)
	return qty
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(model).Count(&n).Error)
	return n
}

func (f *fixture) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	for _, pair := range m.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
			return false
		}
	}
	return true
}

func cash(cents int64) *int64 { return &cents }

func (f *fixture) input(items ...inventory.CartLine) CreateInput {
	return CreateInput{
		StoreID:           f.store.ID,
		EmployeeID:        f.cashier.ID,
		Items:             items,
		PaymentMethod:     enums.PaymentMethodCash,
		CashTenderedCents: cash(100000),
	}
}

func TestCreateCashScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.product(t, "Disposable Vape", 1999, 10, false)
	p2 := f.product(t, "Pod Pack", 1299, 4, false)
	cust := f.customer(t, 0)

	in := f.input(
		inventory.CartLine{ProductID: p1.ID, Quantity: 2},
		inventory.CartLine{ProductID: p2.ID, Quantity: 1},
	)
	in.CashTenderedCents = cash(6000)
	in.CustomerID = &cust.ID

	txn, err := f.svc.Create(ctx, in)
	require.NoError(t, err)
	require.Regexp(t, receiptPattern, txn.ReceiptNumber)
	require.Equal(t, int64(5297), txn.SubtotalCents)
	require.Equal(t, int64(424), txn.TaxCents)
	require.Equal(t, int64(5721), txn.TotalCents)
	require.Equal(t, int64(279), *txn.ChangeCents)
	require.Equal(t, int64(6000), *txn.CashTenderedCents)
	require.Equal(t, int64(57), txn.LoyaltyPointsEarned)
	require.Equal(t, enums.PaymentStatusCompleted, txn.PaymentStatus)
	require.Nil(t, txn.PaymentReference)
	require.Len(t, txn.LineItems, 2)

	var sum int64
	for _, li := range txn.LineItems {
		sum += li.LineTotalCents
	}
	require.Equal(t, txn.SubtotalCents, sum)
	require.Equal(t, txn.TotalCents, txn.SubtotalCents+txn.TaxCents)

	require.Equal(t, 8, f.onHand(t, p1.ID))
	require.Equal(t, 3, f.onHand(t, p2.ID))

	reloadedCustomer, err := f.customers.FindByID(ctx, cust.ID, false)
	require.NoError(t, err)
	require.Equal(t, int64(57), reloadedCustomer.LoyaltyPoints)
	require.Equal(t, int64(5721), reloadedCustomer.LifetimeSpendCents)
	require.Equal(t, "SILVER", reloadedCustomer.LoyaltyTier)

	stored, err := f.svc.Get(ctx, f.store.ID, txn.ID)
	require.NoError(t, err)
	require.Equal(t, txn.ReceiptNumber, stored.ReceiptNumber)
	names := map[string]int{}
	for _, li := range stored.LineItems {
		names[li.ProductName] = li.Quantity
	}
	require.Equal(t, map[string]int{"Disposable Vape": 2, "Pod Pack": 1}, names)
	require.True(t, stored.TaxRate.Equal(txn.TaxRate))

	require.Equal(t, float64(1), f.counter(t, "justsell_checkout_attempts_total", map[string]string{"outcome": metrics.OutcomeCommitted}))
	require.Equal(t, float64(5721), f.counter(t, "justsell_sales_cents_total", map[string]string{"payment_method": "CASH"}))
}

func TestCreateRejectsInsufficientStockWithoutWrites(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Disposable Vape", 1999, 5, false)

	_, err := f.svc.Create(context.Background(), f.input(inventory.CartLine{ProductID: p.ID, Quantity: 20}))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodePolicy))
	typed := pkgerrors.As(err)
	require.Equal(t, "Insufficient stock for Disposable Vape: available 5, requested 20", typed.Message())
	details := typed.Details().(map[string]any)
	require.Equal(t, 5, details["available"])
	require.Equal(t, 20, details["requested"])

	require.Equal(t, 5, f.onHand(t, p.ID))
	require.Zero(t, f.count(t, &models.Transaction{}))
	require.Equal(t, float64(1), f.counter(t, "justsell_checkout_attempts_total", map[string]string{"outcome": metrics.OutcomeRejected}))
}

func TestCreateRequiresAgeVerificationFirst(t *testing.T) {
	f := newFixture(t)
	vape := f.product(t, "Disposable Vape", 1999, 1, true)

	in := f.input(inventory.CartLine{ProductID: vape.ID, Quantity: 50})
	in.CashTenderedCents = cash(1)
	_, err := f.svc.Create(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodePolicy))
	require.Equal(t, "Age verification required for restricted products", pkgerrors.As(err).Message())
	require.Zero(t, f.count(t, &models.Transaction{}))
}

func TestCreateAgeGateOutranksInvalidTender(t *testing.T) {
	f := newFixture(t)
	vape := f.product(t, "Disposable Vape", 1999, 5, true)

	in := f.input(inventory.CartLine{ProductID: vape.ID, Quantity: 1})
	in.PaymentMethod = "BITCOIN"
	in.CashTenderedCents = nil
	_, err := f.svc.Create(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodePolicy))
	require.Equal(t, "Age verification required for restricted products", pkgerrors.As(err).Message())

	in.AgeVerificationCompleted = true
	_, err = f.svc.Create(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, "invalid payment_method", pkgerrors.As(err).Message())
	require.Zero(t, f.count(t, &models.Transaction{}))
	require.Equal(t, 5, f.onHand(t, vape.ID))
}

func TestCreateWithVerifiedAge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vape := f.product(t, "Disposable Vape", 1999, 3, true)

	record, err := f.verifier.Verify(ctx, ageverify.VerifyInput{
		StoreID:          f.store.ID,
		EmployeeID:       f.cashier.ID,
		IDType:           enums.IDTypeDriversLicense,
		IDNumber:         "D1234567",
		DateOfBirth:      time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC),
		IDExpirationDate: time.Now().UTC().AddDate(2, 0, 0),
	})
	require.NoError(t, err)

	in := f.input(inventory.CartLine{ProductID: vape.ID, Quantity: 1})
	in.AgeVerificationCompleted = true
	in.AgeVerificationID = &record.ID
	txn, err := f.svc.Create(ctx, in)
	require.NoError(t, err)
	require.True(t, txn.AgeVerificationRequired)
	require.True(t, txn.AgeVerificationCompleted)
	require.Equal(t, record.ID, *txn.AgeVerificationID)
	require.True(t, txn.LineItems[0].AgeRestricted)

	minor, err := f.verifier.Verify(ctx, ageverify.VerifyInput{
		StoreID:          f.store.ID,
		EmployeeID:       f.cashier.ID,
		IDType:           enums.IDTypeStateID,
		IDNumber:         "S1",
		DateOfBirth:      time.Now().UTC().AddDate(-19, 0, 0),
		IDExpirationDate: time.Now().UTC().AddDate(2, 0, 0),
	})
	require.NoError(t, err)
	in.AgeVerificationID = &minor.ID
	_, err = f.svc.Create(ctx, in)
	require.Equal(t, "Age verification denied", pkgerrors.As(err).Message())
	require.Equal(t, 2, f.onHand(t, vape.ID))
}

func TestCreateRejectsInsufficientCash(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Lighter", 1000, 5, false)

	in := f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1})
	in.CashTenderedCents = cash(1000)
	_, err := f.svc.Create(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodePolicy))
	require.Equal(t, "Insufficient cash tendered", pkgerrors.As(err).Message())
	require.Equal(t, 5, f.onHand(t, p.ID))
	require.Zero(t, f.count(t, &models.Transaction{}))
}

func TestCreateCardPayment(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Lighter", 5000, 5, false)

	in := f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1})
	in.PaymentMethod = enums.PaymentMethodCard
	txn, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, txn.PaymentReference)
	require.True(t, strings.HasPrefix(*txn.PaymentReference, "stub_"))
	require.Nil(t, txn.CashTenderedCents)
	require.Nil(t, txn.ChangeCents)
	require.Zero(t, txn.LoyaltyPointsEarned)

	f.svc.processor = declineProcessor{}
	_, err = f.svc.Create(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodePolicy))
	require.Equal(t, 4, f.onHand(t, p.ID))
}

func TestCreateValidatesRequest(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Lighter", 100, 5, false)
	ctx := context.Background()

	in := f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1})
	in.EmployeeID = uuid.Nil
	_, err := f.svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = f.svc.Create(ctx, f.input())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1})
	in.PaymentMethod = "BITCOIN"
	_, err = f.svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, f.input(inventory.CartLine{ProductID: uuid.New(), Quantity: 1}))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	in = f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1})
	in.LoyaltyPointsRedeemed = 10
	_, err = f.svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateRedeemsLoyaltyPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Pods", 2000, 5, false)
	cust := f.customer(t, 100)

	in := f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1})
	in.CustomerID = &cust.ID
	in.LoyaltyPointsRedeemed = 150
	_, err := f.svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodePolicy))
	require.Equal(t, "Insufficient loyalty points", pkgerrors.As(err).Message())

	in.LoyaltyPointsRedeemed = 30
	txn, err := f.svc.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, int64(21), txn.LoyaltyPointsEarned)
	require.Equal(t, int64(30), txn.LoyaltyPointsRedeemed)

	reloaded, err := f.customers.FindByID(ctx, cust.ID, false)
	require.NoError(t, err)
	require.Equal(t, int64(100+21-30), reloaded.LoyaltyPoints)
}

func TestCreateRetriesReceiptCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Pods", 1000, 10, false)

	f.svc.numberer = &scriptedNumberer{numbers: []string{"R2501010000000001"}}
	first, err := f.svc.Create(ctx, f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	require.Equal(t, "R2501010000000001", first.ReceiptNumber)

	f.svc.numberer = &scriptedNumberer{numbers: []string{"R2501010000000001", "R2501010000000002"}}
	second, err := f.svc.Create(ctx, f.input(inventory.CartLine{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)
	require.Equal(t, "R2501010000000002", second.ReceiptNumber)
	require.Equal(t, 7, f.onHand(t, p.ID))
	require.Equal(t, float64(1), f.counter(t, "justsell_receipt_number_retries_total", nil))

	numberer := &scriptedNumberer{numbers: []string{"R2501010000000001"}}
	f.svc.numberer = numberer
	_, err = f.svc.Create(ctx, f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1}))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	require.Equal(t, persistFailureMessage, pkgerrors.As(err).Message())
	require.Equal(t, maxCommitAttempts, numberer.calls)
	require.Equal(t, 7, f.onHand(t, p.ID))
	require.Equal(t, int64(2), f.count(t, &models.Transaction{}))
	require.Equal(t, int64(2), f.count(t, &models.LineItem{}))
}

func TestCreateRollsBackWhenCommitFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Pods", 1000, 10, false)
	cust := f.customer(t, 0)

	sequenceDown := errors.New("sequence unavailable")
	f.svc.numberer = failingNumberer{err: sequenceDown}

	in := f.input(inventory.CartLine{ProductID: p.ID, Quantity: 3})
	in.CustomerID = &cust.ID
	_, err := f.svc.Create(ctx, in)
	require.ErrorIs(t, err, sequenceDown)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
	require.Equal(t, persistFailureMessage, pkgerrors.As(err).Message())

	require.Equal(t, 10, f.onHand(t, p.ID))
	require.Zero(t, f.count(t, &models.Transaction{}))
	reloaded, err := f.customers.FindByID(ctx, cust.ID, false)
	require.NoError(t, err)
	require.Zero(t, reloaded.LoyaltyPoints)
	require.Zero(t, reloaded.LifetimeSpendCents)
	require.Equal(t, float64(1), f.counter(t, "justsell_checkout_attempts_total", map[string]string{"outcome": metrics.OutcomeFailed}))
}

func TestListNewestFirstWithPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Pods", 100, 50, false)

	base := time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
	var receipts []string
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		f.svc.clock = func() time.Time { return at }
		txn, err := f.svc.Create(ctx, f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1}))
		require.NoError(t, err)
		receipts = append(receipts, txn.ReceiptNumber)
	}
	require.Equal(t, "R2506150900000001", receipts[0])
	require.Equal(t, "R2506150904000005", receipts[4])

	page, err := f.svc.List(ctx, f.store.ID, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Transactions, 2)
	require.Equal(t, receipts[2], page.Transactions[0].ReceiptNumber)
	require.Equal(t, receipts[1], page.Transactions[1].ReceiptNumber)
	require.Equal(t, int64(5), page.Meta.Total)
	require.Equal(t, 3, page.Meta.Pages)

	other, err := f.svc.List(ctx, uuid.New(), pagination.Params{})
	require.NoError(t, err)
	require.Empty(t, other.Transactions)

	_, err = f.svc.Get(ctx, uuid.New(), page.Transactions[0].ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestReceiptAndPrint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Premium Disposable Vape Mango Ice", 1999, 5, false)
	cust := f.customer(t, 0)

	in := f.input(inventory.CartLine{ProductID: p.ID, Quantity: 1})
	in.CustomerID = &cust.ID
	in.CashTenderedCents = cash(2500)
	txn, err := f.svc.Create(ctx, in)
	require.NoError(t, err)

	receipt, err := f.svc.Receipt(ctx, f.store.ID, txn.ID)
	require.NoError(t, err)
	require.Equal(t, "Casey J.", receipt.Data.CashierName)
	require.Equal(t, "Jane Doe", receipt.Data.CustomerName)
	require.NotNil(t, receipt.Data.Loyalty)
	require.Equal(t, int64(21), receipt.Data.Loyalty.Balance)
	require.Contains(t, receipt.Rendered.Text, "Premium Disposabl...")
	require.Contains(t, receipt.Rendered.Text, "Customer: Jane Doe")
	require.Contains(t, receipt.Rendered.Text, "Change")
	require.Contains(t, receipt.Rendered.HTML, txn.ReceiptNumber)

	result, err := f.svc.Print(ctx, PrintInput{StoreID: f.store.ID, EmployeeID: f.cashier.ID, TransactionID: txn.ID, Copies: 2})
	require.NoError(t, err)
	require.Equal(t, enums.ReceiptFormatText, result.Format)
	require.Equal(t, 2, result.Copies)
	require.Len(t, f.printer.jobs, 1)
	require.Equal(t, txn.ReceiptNumber, f.printer.jobs[0].ReceiptNumber)
	require.False(t, f.printer.jobs[0].Reprint)
	require.False(t, result.Reprint)

	prints, err := f.svc.repo.CountPrints(ctx, txn.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), prints)

	again, err := f.svc.Print(ctx, PrintInput{StoreID: f.store.ID, EmployeeID: f.cashier.ID, TransactionID: txn.ID, Format: enums.ReceiptFormatHTML})
	require.NoError(t, err)
	require.True(t, again.Reprint)
	require.Len(t, f.printer.jobs, 2)
	require.True(t, f.printer.jobs[1].Reprint)
	require.Contains(t, f.printer.jobs[1].Body, txn.ReceiptNumber)

	_, err = f.svc.Print(ctx, PrintInput{StoreID: f.store.ID, TransactionID: txn.ID, Copies: 9})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.Print(ctx, PrintInput{StoreID: f.store.ID, TransactionID: txn.ID, Format: enums.ReceiptFormatJSON})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.Print(ctx, PrintInput{StoreID: f.store.ID, TransactionID: uuid.New()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestReceiptReprintKeepsSaleTimeSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lighter := f.product(t, "Lighter", 1000, 5, false)
	kit := f.product(t, "Starter Kit", 5000, 5, false)
	cust := f.customer(t, 0)

	first := f.input(inventory.CartLine{ProductID: lighter.ID, Quantity: 1})
	first.CustomerID = &cust.ID
	sale1, err := f.svc.Create(ctx, first)
	require.NoError(t, err)
	require.Equal(t, int64(10), sale1.LoyaltyPointsEarned)
	require.NotNil(t, sale1.LoyaltyBalanceAfter)
	require.Equal(t, int64(10), *sale1.LoyaltyBalanceAfter)

	second := f.input(inventory.CartLine{ProductID: kit.ID, Quantity: 1})
	second.CustomerID = &cust.ID
	_, err = f.svc.Create(ctx, second)
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.Customer{}).Where("id = ?", cust.ID).Update("first_name", "Janet").Error)

	reloaded, err := f.customers.FindByID(ctx, cust.ID, false)
	require.NoError(t, err)
	require.Equal(t, int64(64), reloaded.LoyaltyPoints)

	reprint, err := f.svc.Receipt(ctx, f.store.ID, sale1.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", reprint.Data.CustomerName)
	require.NotNil(t, reprint.Data.Loyalty)
	require.Equal(t, int64(10), reprint.Data.Loyalty.Balance)
	require.Contains(t, reprint.Rendered.Text, "Customer: Jane Doe")
}

func TestFormatReceiptNumber(t *testing.T) {
	at := time.Date(2025, time.June, 15, 14, 3, 9, 0, time.FixedZone("CST", -6*3600))
	require.Equal(t, "R2506152003090042", FormatReceiptNumber(at, 42))
	require.Equal(t, fmt.Sprintf("R250615200309%d", 12345), FormatReceiptNumber(at, 12345))
}
