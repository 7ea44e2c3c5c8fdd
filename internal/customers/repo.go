package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/fieldcrypt"
	"github.com/Uptivity/justsell-pos-sub002/pkg/pagination"
)

// Repository persists customers. Contact details and date of birth are encrypted on write and
// decrypted on read; callers only ever see plaintext.
type Repository struct {
	db     *gorm.DB
	cipher *fieldcrypt.Cipher
}

// NewRepository binds a GORM DB and field cipher to customer operations.
func NewRepository(db *gorm.DB, cipher *fieldcrypt.Cipher) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if cipher == nil {
		return nil, fmt.Errorf("field cipher required")
	}
	return &Repository{db: db, cipher: cipher}, nil
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx, cipher: r.cipher}
}

func targets(c *models.Customer) []fieldcrypt.Target {
	return []fieldcrypt.Target{
		{Field: fieldcrypt.FieldCustomerEmail, Value: c.Email},
		{Field: fieldcrypt.FieldCustomerPhone, Value: c.Phone},
		{Field: fieldcrypt.FieldCustomerDateOfBirth, Value: c.DateOfBirth},
	}
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Create inserts customer, leaving the caller's plaintext untouched.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return fmt.Errorf("customer is required")
	}
	row := *customer
	row.Email = cloneString(customer.Email)
	row.Phone = cloneString(customer.Phone)
	row.DateOfBirth = cloneString(customer.DateOfBirth)
	if err := r.cipher.EncryptFields(targets(&row)...); err != nil {
		return fmt.Errorf("encrypt customer: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	customer.ID = row.ID
	customer.CreatedAt = row.CreatedAt
	customer.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID loads a customer. With lock set the row is read FOR UPDATE on Postgres.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID, lock bool) (*models.Customer, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if lock && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var customer models.Customer
	if err := q.First(&customer).Error; err != nil {
		return nil, err
	}
	if err := r.decrypt(&customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns customers ordered by name. lastName filters by case-insensitive prefix.
func (r *Repository) List(ctx context.Context, lastName string, params pagination.Params) ([]models.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{})
	if prefix := strings.ToLower(strings.TrimSpace(lastName)); prefix != "" {
		q = q.Where(`LOWER(last_name) LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Customer
	if err := q.Order("last_name ASC").Order("first_name ASC").Order("id ASC").
		Offset(params.Skip()).
		Limit(params.Take()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	for i := range rows {
		if err := r.decrypt(&rows[i]); err != nil {
			return nil, 0, err
		}
	}
	return rows, total, nil
}

// UpdateLoyalty writes the loyalty state produced by a sale.
func (r *Repository) UpdateLoyalty(ctx context.Context, id uuid.UUID, points, lifetimeSpendCents int64, tier string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"loyalty_points":       points,
			"lifetime_spend_cents": lifetimeSpendCents,
			"loyalty_tier":         tier,
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) decrypt(c *models.Customer) error {
	if err := r.cipher.DecryptFields(targets(c)...); err != nil {
		return fmt.Errorf("decrypt customer %s: %w", c.ID, err)
	}
	return nil
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
