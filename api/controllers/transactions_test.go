package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/internal/receipts"
	"github.com/Uptivity/justsell-pos-sub002/internal/transactions"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

type stubTransactionService struct {
	createInput transactions.CreateInput
	createErr   error
	listStore   uuid.UUID
	listParams  pagination.Params
	getStore    uuid.UUID
	printInput  transactions.PrintInput
	receipt     *transactions.ReceiptResult
}

func (s *stubTransactionService) Create(ctx context.Context, input transactions.CreateInput) (*transactions.TransactionDTO, error) {
	s.createInput = input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &transactions.TransactionDTO{ID: uuid.New(), ReceiptNumber: "R2506151230450001", TotalCents: 5721}, nil
}

func (s *stubTransactionService) Get(ctx context.Context, storeID, id uuid.UUID) (*transactions.TransactionDTO, error) {
	s.getStore = storeID
	return &transactions.TransactionDTO{ID: id, StoreID: storeID}, nil
}

func (s *stubTransactionService) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*transactions.ListResult, error) {
	s.listStore = storeID
	s.listParams = params
	return &transactions.ListResult{Meta: pagination.MetaFor(params.Normalize(), 0)}, nil
}

func (s *stubTransactionService) Receipt(ctx context.Context, storeID, id uuid.UUID) (*transactions.ReceiptResult, error) {
	if s.receipt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	return s.receipt, nil
}

func (s *stubTransactionService) Print(ctx context.Context, input transactions.PrintInput) (*transactions.PrintResult, error) {
	s.printInput = input
	return &transactions.PrintResult{PrintID: uuid.New(), Copies: input.Copies, Format: input.Format}, nil
}

func TestCreateTransactionMapsIdentityAndCart(t *testing.T) {
	svc := &stubTransactionService{}
	identity := cashierIdentity()
	productID := uuid.New()
	customerID := uuid.New()
	body := map[string]any{
		"items":                      []map[string]any{{"product_id": productID.String(), "quantity": 2}},
		"payment_method":             "cash",
		"cash_tendered_cents":        6000,
		"customer_id":                customerID.String(),
		"age_verification_completed": true,
		"loyalty_points_redeemed":    10,
	}

	rec := httptest.NewRecorder()
	CreateTransaction(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/api/transactions", body, &identity, nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	in := svc.createInput
	if in.StoreID != identity.StoreID || in.EmployeeID != identity.EmployeeID {
		t.Fatalf("identity not propagated: %+v", in)
	}
	if in.PaymentMethod != enums.PaymentMethodCash {
		t.Fatalf("expected CASH got %s", in.PaymentMethod)
	}
	if len(in.Items) != 1 || in.Items[0].ProductID != productID || in.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", in.Items)
	}
	if in.CashTenderedCents == nil || *in.CashTenderedCents != 6000 {
		t.Fatalf("unexpected cash tendered %v", in.CashTenderedCents)
	}
	if in.CustomerID == nil || *in.CustomerID != customerID {
		t.Fatalf("unexpected customer %v", in.CustomerID)
	}
	if !in.AgeVerificationCompleted || in.LoyaltyPointsRedeemed != 10 {
		t.Fatalf("flags not mapped: %+v", in)
	}
}

func TestCreateTransactionRejectsBadPayloads(t *testing.T) {
	identity := cashierIdentity()
	cases := map[string]any{
		"empty cart":     map[string]any{"items": []any{}, "payment_method": "CASH"},
		"zero quantity":  map[string]any{"items": []map[string]any{{"product_id": uuid.NewString(), "quantity": 0}}, "payment_method": "CASH"},
		"bad product id": map[string]any{"items": []map[string]any{{"product_id": "nope", "quantity": 1}}, "payment_method": "CASH"},
		"unknown field":  `{"items":[],"payment_method":"CASH","discount":5}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubTransactionService{}
			rec := httptest.NewRecorder()
			CreateTransaction(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/api/transactions", body, &identity, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
			}
			if env := decodeEnvelope(t, rec); env.Error.Code != string(pkgerrors.CodeValidation) {
				t.Fatalf("expected validation code got %s", env.Error.Code)
			}
		})
	}
}

func TestCreateTransactionLeavesTenderCheckToService(t *testing.T) {
	identity := cashierIdentity()
	svc := &stubTransactionService{createErr: pkgerrors.Policy("Age verification required for restricted products", nil)}
	body := map[string]any{
		"items":          []map[string]any{{"product_id": uuid.NewString(), "quantity": 1}},
		"payment_method": " bitcoin ",
	}

	rec := httptest.NewRecorder()
	CreateTransaction(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/api/transactions", body, &identity, nil))

	if svc.createInput.PaymentMethod != enums.PaymentMethod("BITCOIN") {
		t.Fatalf("expected normalized tender to reach the service, got %q", svc.createInput.PaymentMethod)
	}
	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusBadRequest || env.Error.Code != string(pkgerrors.CodePolicy) {
		t.Fatalf("expected policy rejection got %d %s", rec.Code, env.Error.Code)
	}
}

func TestCreateTransactionRequiresIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	CreateTransaction(&stubTransactionService{}, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/api/transactions", `{}`, nil, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestCreateTransactionSurfacesPolicyDetails(t *testing.T) {
	identity := cashierIdentity()
	svc := &stubTransactionService{createErr: pkgerrors.Policy("Insufficient stock for Mint Pods: available 5, requested 20", map[string]any{
		"available": 5,
		"requested": 20,
	})}
	body := map[string]any{
		"items":          []map[string]any{{"product_id": uuid.NewString(), "quantity": 20}},
		"payment_method": "CARD",
	}
	rec := httptest.NewRecorder()
	CreateTransaction(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/api/transactions", body, &identity, nil))

	env := decodeEnvelope(t, rec)
	if env.Error.Code != string(pkgerrors.CodePolicy) {
		t.Fatalf("expected policy code got %s", env.Error.Code)
	}
	if env.Error.Message != "Insufficient stock for Mint Pods: available 5, requested 20" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
	if env.Error.Details["requested"] != float64(20) {
		t.Fatalf("expected details to include requested, got %v", env.Error.Details)
	}
}

func TestListTransactionsFallsBackToDefaultPaging(t *testing.T) {
	svc := &stubTransactionService{}
	identity := cashierIdentity()
	rec := httptest.NewRecorder()
	ListTransactions(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodGet, "/api/transactions?page=abc&limit=xyz", nil, &identity, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.listStore != identity.StoreID {
		t.Fatalf("list not scoped to caller store")
	}
	if svc.listParams.Page != 1 || svc.listParams.Limit != 20 {
		t.Fatalf("expected defaults, got %+v", svc.listParams)
	}
}

func TestGetTransactionRejectsBadID(t *testing.T) {
	identity := cashierIdentity()
	rec := httptest.NewRecorder()
	GetTransaction(&stubTransactionService{}, testLogger()).ServeHTTP(rec, newRequest(http.MethodGet, "/api/transactions/x", nil, &identity, map[string]string{"id": "x"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestGetReceiptFormats(t *testing.T) {
	identity := cashierIdentity()
	id := uuid.NewString()
	svc := &stubTransactionService{receipt: &transactions.ReceiptResult{
		Data:     receipts.Input{ReceiptNumber: "R2506151230450001"},
		Rendered: receipts.Receipt{Text: "JUSTSELL\nTOTAL $57.21\n", HTML: "<html><body>TOTAL</body></html>"},
	}}
	handler := GetReceipt(svc, testLogger())

	t.Run("text", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(http.MethodGet, "/r?format=text", nil, &identity, map[string]string{"id": id}))
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
			t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
		}
		if rec.Body.String() != "JUSTSELL\nTOTAL $57.21\n" {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("html", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(http.MethodGet, "/r?format=HTML", nil, &identity, map[string]string{"id": id}))
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
			t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
		}
	})

	t.Run("json default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(http.MethodGet, "/r", nil, &identity, map[string]string{"id": id}))
		var data struct {
			Receipt receipts.Input `json:"receipt"`
			Text    string         `json:"text"`
		}
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if data.Receipt.ReceiptNumber != "R2506151230450001" || data.Text == "" {
			t.Fatalf("unexpected receipt payload %+v", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest(http.MethodGet, "/r?format=pdf", nil, &identity, map[string]string{"id": id}))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})
}

func TestPrintReceiptDefaultsAndBody(t *testing.T) {
	identity := cashierIdentity()
	id := uuid.New()

	svc := &stubTransactionService{}
	rec := httptest.NewRecorder()
	PrintReceipt(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/p", nil, &identity, map[string]string{"id": id.String()}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.printInput.TransactionID != id || svc.printInput.EmployeeID != identity.EmployeeID {
		t.Fatalf("unexpected print input %+v", svc.printInput)
	}

	rec = httptest.NewRecorder()
	PrintReceipt(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/p", map[string]any{"format": "html", "copies": 2}, &identity, map[string]string{"id": id.String()}))
	if svc.printInput.Format != enums.ReceiptFormatHTML || svc.printInput.Copies != 2 {
		t.Fatalf("unexpected print input %+v", svc.printInput)
	}

	chunked := newRequest(http.MethodPost, "/p", nil, &identity, map[string]string{"id": id.String()})
	chunked.Body = io.NopCloser(strings.NewReader(""))
	chunked.ContentLength = -1
	chunked.TransferEncoding = []string{"chunked"}
	rec = httptest.NewRecorder()
	PrintReceipt(svc, testLogger()).ServeHTTP(rec, chunked)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected empty chunked body to be accepted got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	PrintReceipt(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/p", `{"copies":`, &identity, map[string]string{"id": id.String()}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for truncated body got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	PrintReceipt(svc, testLogger()).ServeHTTP(rec, newRequest(http.MethodPost, "/p", map[string]any{"copies": 9}, &identity, map[string]string{"id": id.String()}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too many copies got %d", rec.Code)
	}
}
