package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

// Repository persists transactions and their line items. There is no update or delete path.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to transaction operations.
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

// Insert writes the transaction together with its line items.
func (r *Repository) Insert(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindByID loads a store's transaction with line items in insertion order.
func (r *Repository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// List returns one page of a store's transactions, newest first.
func (r *Repository) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("store_id = ?", storeID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Transaction
	if err := q.
		Preload("LineItems").
		Order("created_at DESC").
		Order("receipt_number DESC").
		Offset(params.Skip()).
		Limit(params.Take()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// InsertPrint records a receipt print request.
func (r *Repository) InsertPrint(ctx context.Context, print *models.ReceiptPrint) error {
	return r.db.WithContext(ctx).Create(print).Error
}

// CountPrints returns how many print requests a transaction has.
func (r *Repository) CountPrints(ctx context.Context, transactionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ReceiptPrint{}).Where("transaction_id = ?", transactionID).Count(&count).Error
	return count, err
}
