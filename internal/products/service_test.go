package products

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
)

type stubRepo struct {
	createErr error
	updated   map[string]any
	updateErr error
	product   *models.Product
}

func (s *stubRepo) Create(ctx context.Context, product *models.Product) error {
	if s.createErr != nil {
		return s.createErr
	}
	product.ID = uuid.New()
	s.product = product
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	if s.product == nil {
		return nil, errNotFound
	}
	return s.product, nil
}

func (s *stubRepo) Update(ctx context.Context, storeID, id uuid.UUID, changes map[string]any) error {
	s.updated = changes
	return s.updateErr
}

func (s *stubRepo) List(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	return nil, 0, nil
}

var errNotFound = errors.New("record not found")

func newStubService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newStubService(t, &stubRepo{})
	cases := []CreateInput{
		{SKU: "", Name: "Vape", PriceCents: 100},
		{SKU: "V1", Name: "  ", PriceCents: 100},
		{SKU: "V1", Name: "Vape", PriceCents: -1},
		{SKU: "V1", Name: "Vape", PriceCents: 100, OnHandQty: -3},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), uuid.New(), in); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestCreateMapsDuplicateSKUToConflict(t *testing.T) {
	repo := &stubRepo{createErr: errors.New(`ERROR: duplicate key value violates unique constraint "products_store_sku_key"`)}
	svc := newStubService(t, repo)
	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{SKU: "V1", Name: "Vape", PriceCents: 100})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateOnlyWritesProvidedFields(t *testing.T) {
	repo := &stubRepo{product: &models.Product{Name: "Vape"}}
	svc := newStubService(t, repo)
	price := int64(1299)
	if _, err := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateInput{PriceCents: &price}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.updated["price_cents"] != int64(1299) {
		t.Fatalf("expected price change, got %v", repo.updated)
	}
	if _, ok := repo.updated["name"]; ok {
		t.Fatalf("name should not be written: %v", repo.updated)
	}
	if _, ok := repo.updated["updated_at"]; !ok {
		t.Fatalf("updated_at should be set: %v", repo.updated)
	}
}

func TestUpdateRejectsNegativeStock(t *testing.T) {
	repo := &stubRepo{product: &models.Product{}}
	svc := newStubService(t, repo)
	qty := -1
	if _, err := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateInput{OnHandQty: &qty}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.updated != nil {
		t.Fatal("repository should not be called")
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(nil, logger.New(logger.Options{})); err == nil {
		t.Fatal("expected error for nil repo")
	}
	if _, err := NewService(&stubRepo{}, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}
