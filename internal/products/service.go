// Package products manages the store catalog. Historical line items keep their own snapshot,
// so catalog edits never reach past sales.
package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db"
	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/logger"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, storeID, id uuid.UUID, changes map[string]any) error
	List(ctx context.Context, q ListQuery) ([]models.Product, int64, error)
}

// Service exposes catalog operations scoped to the caller's store.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, storeID, id uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Deactivate(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error)
}

// ListInput filters the catalog listing.
type ListInput struct {
	StoreID    uuid.UUID
	ActiveOnly bool
	Category   string
	Search     string
	Params     pagination.Params
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	SKU            string
	Name           string
	Category       string
	PriceCents     int64
	OnHandQty      int
	AgeRestricted  bool
	LotNumber      *string
	ExpirationDate *time.Time
}

// UpdateInput holds optional mutation values. OnHandQty sets the absolute count.
type UpdateInput struct {
	Name           *string
	Category       *string
	PriceCents     *int64
	OnHandQty      *int
	AgeRestricted  *bool
	LotNumber      *string
	ExpirationDate *time.Time
}

type service struct {
	repo productRepository
	logg *logger.Logger
}

// NewService constructs a catalog service.
func NewService(repo productRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	params := input.Params.Normalize()
	rows, total, err := s.repo.List(ctx, ListQuery{
		StoreID:    input.StoreID,
		ActiveOnly: input.ActiveOnly,
		Category:   input.Category,
		Search:     input.Search,
		Params:     params,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ListResult{Products: out, Meta: pagination.MetaFor(params, total)}, nil
}

func (s *service) Get(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*ProductDTO, error) {
	sku := strings.TrimSpace(input.SKU)
	name := strings.TrimSpace(input.Name)
	if sku == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku and name are required")
	}
	if err := validatePrice(input.PriceCents); err != nil {
		return nil, err
	}
	if err := validateQty(input.OnHandQty); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:        storeID,
		SKU:            sku,
		Name:           name,
		Category:       strings.TrimSpace(input.Category),
		PriceCents:     input.PriceCents,
		OnHandQty:      input.OnHandQty,
		AgeRestricted:  input.AgeRestricted,
		LotNumber:      input.LotNumber,
		ExpirationDate: input.ExpirationDate,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %s already exists", sku))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, storeID, id uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	changes := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		changes["name"] = name
	}
	if input.Category != nil {
		changes["category"] = strings.TrimSpace(*input.Category)
	}
	if input.PriceCents != nil {
		if err := validatePrice(*input.PriceCents); err != nil {
			return nil, err
		}
		changes["price_cents"] = *input.PriceCents
	}
	if input.OnHandQty != nil {
		if err := validateQty(*input.OnHandQty); err != nil {
			return nil, err
		}
		changes["on_hand_qty"] = *input.OnHandQty
	}
	if input.AgeRestricted != nil {
		changes["age_restricted"] = *input.AgeRestricted
	}
	if input.LotNumber != nil {
		changes["lot_number"] = *input.LotNumber
	}
	if input.ExpirationDate != nil {
		changes["expiration_date"] = *input.ExpirationDate
	}
	if len(changes) == 0 {
		return s.Get(ctx, storeID, id)
	}
	changes["updated_at"] = time.Now().UTC()

	if err := s.repo.Update(ctx, storeID, id, changes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	if input.OnHandQty != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"product_id": id.String(), "on_hand_qty": *input.OnHandQty})
		s.logg.Info(logCtx, "product.stock_adjusted")
	}
	return s.Get(ctx, storeID, id)
}

func (s *service) Deactivate(ctx context.Context, storeID, id uuid.UUID) (*ProductDTO, error) {
	if err := s.repo.Update(ctx, storeID, id, map[string]any{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate product")
	}
	return s.Get(ctx, storeID, id)
}

func (s *service) load(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func validatePrice(cents int64) error {
	if cents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	return nil
}

func validateQty(qty int) error {
	if qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "on_hand_qty must be non-negative")
	}
	return nil
}
