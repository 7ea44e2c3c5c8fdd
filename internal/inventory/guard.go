// Package inventory validates requested quantities against on-hand stock and applies the
// decrement inside the checkout transaction.
package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	pkgerrors "github.com/Uptivity/justsell-pos-sub002/pkg/errors"
)

// CartLine is a requested product and quantity.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// ResolvedLine pairs a cart line with the product snapshot it was checked against.
type ResolvedLine struct {
	Product  models.Product
	Quantity int
}

// Guard checks stock. Check is read-only; Decrement must run inside the checkout transaction.
type Guard struct {
	repo *Repository
	lock bool
}

// NewGuard builds a guard over the repository.
func NewGuard(repo *Repository) (*Guard, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &Guard{repo: repo}, nil
}

// WithTx returns a guard bound to tx that locks the product rows it reads.
func (g *Guard) WithTx(tx *gorm.DB) *Guard {
	return &Guard{repo: g.repo.WithTx(tx), lock: true}
}

// Check resolves every line and verifies stock for the aggregate quantity per product.
func (g *Guard) Check(ctx context.Context, storeID uuid.UUID, lines []CartLine) ([]ResolvedLine, error) {
	resolved, err := g.Resolve(ctx, storeID, lines)
	if err != nil {
		return nil, err
	}
	if err := EnsureStock(resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// Resolve validates the lines and loads the referenced products without looking at stock. The
// first failing line in request order is reported.
func (g *Guard) Resolve(ctx context.Context, storeID uuid.UUID, lines []CartLine) ([]ResolvedLine, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}

	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"product_id": line.ProductID.String()})
		}
		if _, ok := seen[line.ProductID]; !ok {
			seen[line.ProductID] = struct{}{}
			ids = append(ids, line.ProductID)
		}
	}

	products, err := g.repo.LoadProducts(ctx, storeID, ids, g.lock)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	resolved := make([]ResolvedLine, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", line.ProductID))
		}
		if !product.IsActive {
			return nil, pkgerrors.Policy(fmt.Sprintf("%s is not available for sale", product.Name), map[string]any{
				"product_id":   product.ID.String(),
				"product_name": product.Name,
			})
		}
		resolved = append(resolved, ResolvedLine{Product: product, Quantity: line.Quantity})
	}
	return resolved, nil
}

// EnsureStock verifies the on-hand snapshot in lines covers the aggregate quantity requested per
// product, reporting the first short line in request order.
func EnsureStock(lines []ResolvedLine) error {
	requested := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		requested[line.Product.ID] += line.Quantity
	}
	for _, line := range lines {
		if want := requested[line.Product.ID]; want > line.Product.OnHandQty {
			return insufficientStock(line.Product, line.Product.OnHandQty, want)
		}
	}
	return nil
}

// Decrement removes the aggregate quantity per product from stock. A conditional update that
// matches no row means a concurrent sale took the stock, and the whole call fails so the
// surrounding transaction rolls back.
func (g *Guard) Decrement(ctx context.Context, lines []ResolvedLine) error {
	totals := make(map[uuid.UUID]int, len(lines))
	products := make(map[uuid.UUID]models.Product, len(lines))
	for _, line := range lines {
		totals[line.Product.ID] += line.Quantity
		products[line.Product.ID] = line.Product
	}
	ids := make([]uuid.UUID, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		qty := totals[id]
		ok, err := g.repo.Decrement(ctx, id, qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
		}
		if !ok {
			available, err := g.repo.OnHand(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read stock")
			}
			return insufficientStock(products[id], available, qty)
		}
	}
	return nil
}

func insufficientStock(p models.Product, available, requested int) error {
	return pkgerrors.Policy(
		fmt.Sprintf("Insufficient stock for %s: available %d, requested %d", p.Name, available, requested),
		map[string]any{
			"product_id":   p.ID.String(),
			"product_name": p.Name,
			"available":    available,
			"requested":    requested,
		},
	)
}
