package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/internal/employees"
	"github.com/Uptivity/justsell-pos-sub002/internal/stores"
	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/security"
)

// BootstrapRequest creates a store and its first ADMIN employee. Dev environments only.
type BootstrapRequest struct {
	StoreName       string  `json:"store_name" validate:"required"`
	AddressLine1    string  `json:"address_line1" validate:"required"`
	AddressLine2    *string `json:"address_line2,omitempty"`
	City            string  `json:"city" validate:"required"`
	State           string  `json:"state" validate:"required,len=2"`
	PostalCode      string  `json:"postal_code" validate:"required"`
	Phone           *string `json:"phone,omitempty"`
	TaxJurisdiction string  `json:"tax_jurisdiction,omitempty"`
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
}

// BootstrapResponse returns the created records.
type BootstrapResponse struct {
	Store    *stores.StoreDTO       `json:"store"`
	Employee *employees.EmployeeDTO `json:"employee"`
}

// BootstrapService seeds a fresh database with a usable store and admin login.
type BootstrapService interface {
	Bootstrap(ctx context.Context, req BootstrapRequest) (*BootstrapResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BootstrapServiceParams names the dependencies for the bootstrap flow.
type BootstrapServiceParams struct {
	DB             txRunner
	PasswordConfig config.PasswordConfig
}

type bootstrapService struct {
	db          txRunner
	passwordCfg config.PasswordConfig
}

// NewBootstrapService builds the dev bootstrap service.
func NewBootstrapService(params BootstrapServiceParams) (BootstrapService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &bootstrapService{db: params.DB, passwordCfg: params.PasswordConfig}, nil
}

func (s *bootstrapService) Bootstrap(ctx context.Context, req BootstrapRequest) (*BootstrapResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name is required")
	}
	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last_name is required")
	}
	if strings.TrimSpace(req.StoreName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_name is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}

	var out BootstrapResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		employeeRepo := employees.NewRepository(tx)

		if _, err := employeeRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check employee email")
		}

		store, err := stores.NewRepository(tx).Create(ctx, stores.CreateStoreDTO{
			Name:            req.StoreName,
			AddressLine1:    req.AddressLine1,
			AddressLine2:    req.AddressLine2,
			City:            req.City,
			State:           req.State,
			PostalCode:      req.PostalCode,
			Phone:           req.Phone,
			TaxJurisdiction: req.TaxJurisdiction,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
		}

		employee, err := employeeRepo.Create(ctx, employees.CreateEmployeeDTO{
			StoreID:      store.ID,
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    firstName,
			LastName:     lastName,
			Role:         enums.EmployeeRoleAdmin,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create employee")
		}

		out.Store = stores.FromModel(store)
		out.Employee = employees.FromModel(employee)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
