// Package customers manages customer profiles and their loyalty balances.
package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

const dobLayout = "2006-01-02"

type customerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uuid.UUID, lock bool) (*models.Customer, error)
	List(ctx context.Context, lastName string, params pagination.Params) ([]models.Customer, int64, error)
}

// Service exposes customer operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CustomerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
}

// CreateInput captures a new customer profile.
type CreateInput struct {
	FirstName   string
	LastName    string
	Email       *string
	Phone       *string
	DateOfBirth *string
}

// ListInput filters and pages the customer list.
type ListInput struct {
	LastName string
	Params   pagination.Params
}

// ListResult is one page of customers.
type ListResult struct {
	Customers []CustomerDTO   `json:"customers"`
	Meta      pagination.Meta `json:"pagination"`
}

type service struct {
	repo customerRepository
}

// NewService builds a customer service.
func NewService(repo customerRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CustomerDTO, error) {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" || last == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name and last_name are required")
	}

	email := trimmed(input.Email)
	if email != nil {
		lowered := strings.ToLower(*email)
		if !strings.Contains(lowered, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
		}
		email = &lowered
	}

	dob := trimmed(input.DateOfBirth)
	if dob != nil {
		parsed, err := time.Parse(dobLayout, *dob)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
		}
		if parsed.After(time.Now().UTC()) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_of_birth cannot be in the future")
		}
	}

	customer := &models.Customer{
		FirstName:   first,
		LastName:    last,
		Email:       email,
		Phone:       trimmed(input.Phone),
		DateOfBirth: dob,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	return FromModel(customer), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	return FromModel(customer), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	params := input.Params.Normalize()
	rows, total, err := s.repo.List(ctx, input.LastName, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ListResult{Customers: out, Meta: pagination.MetaFor(params, total)}, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
