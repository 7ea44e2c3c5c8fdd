package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
)

// Repository reads and decrements product stock.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// LoadProducts returns the store's products among ids. With lock set, rows are read with
// SELECT ... FOR UPDATE on dialects that support it, in id order so concurrent checkouts
// acquire locks consistently.
func (r *Repository) LoadProducts(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID, lock bool) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Where("store_id = ? AND id IN ?", storeID, ids).
		Order("id")
	if lock && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Decrement subtracts qty from on-hand stock only when enough remains. It reports whether the
// row was updated.
func (r *Repository) Decrement(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND on_hand_qty >= ?", productID, qty).
		Updates(map[string]any{
			"on_hand_qty": gorm.Expr("on_hand_qty - ?", qty),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// OnHand returns the current on-hand quantity for a product.
func (r *Repository) OnHand(ctx context.Context, productID uuid.UUID) (int, error) {
	var qty int
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Pluck("on_hand_qty", &qty).Error
	return qty, err
}
