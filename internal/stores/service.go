package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
)

type storeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type taxRateLookup interface {
	Rate(jurisdiction string) decimal.Decimal
}

// Service answers "which store is this terminal ringing up for".
type Service interface {
	Profile(ctx context.Context, id uuid.UUID) (*ProfileDTO, error)
}

type service struct {
	repo  storeRepository
	rates taxRateLookup
}

func NewService(repo storeRepository, rates taxRateLookup) (Service, error) {
	switch {
	case repo == nil:
		return nil, fmt.Errorf("store repository required")
	case rates == nil:
		return nil, fmt.Errorf("tax rate lookup required")
	}
	return &service{repo: repo, rates: rates}, nil
}

// Profile returns the store plus the sales tax rate checkout will apply there.
func (s *service) Profile(ctx context.Context, id uuid.UUID) (*ProfileDTO, error) {
	store, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return &ProfileDTO{
		StoreDTO:     *FromModel(store),
		TaxRate:      s.rates.Rate(store.TaxJurisdiction).String(),
		AddressLines: AddressLines(store),
	}, nil
}
