package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

// Repository handles catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListQuery filters the catalog listing.
type ListQuery struct {
	StoreID    uuid.UUID
	ActiveOnly bool
	Category   string
	Search     string
	Params     pagination.Params
}

// Create inserts a product.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads a product within a store.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update writes the given columns for a product.
func (r *Repository) Update(ctx context.Context, storeID, id uuid.UUID, changes map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("store_id = ? AND id = ?", storeID, id).
		Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of products ordered by name.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{}).Where("store_id = ?", q.StoreID)
	if q.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if category := strings.TrimSpace(q.Category); category != "" {
		tx = tx.Where("category = ?", category)
	}
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		like := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search) + "%"
		tx = tx.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\')`, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	if err := tx.Order("name ASC").Order("id ASC").
		Offset(q.Params.Skip()).
		Limit(q.Params.Take()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
