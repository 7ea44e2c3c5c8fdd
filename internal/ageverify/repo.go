package ageverify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db/models"
	"github.com/Uptivity/justsell-pos-sub002/pkg/fieldcrypt"
)

// Repository persists verification records, encrypting the document number and date of birth.
type Repository struct {
	db     *gorm.DB
	cipher *fieldcrypt.Cipher
}

// NewRepository binds a GORM DB and field cipher to verification records.
func NewRepository(db *gorm.DB, cipher *fieldcrypt.Cipher) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if cipher == nil {
		return nil, fmt.Errorf("field cipher required")
	}
	return &Repository{db: db, cipher: cipher}, nil
}

// Create inserts record. The caller's struct keeps plaintext values; only the stored row is
// encrypted.
func (r *Repository) Create(ctx context.Context, record *models.AgeVerificationRecord) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	row := *record
	if err := r.cipher.EncryptFields(
		fieldcrypt.Target{Field: fieldcrypt.FieldAgeVerificationIDNumber, Value: &row.IDNumber},
		fieldcrypt.Target{Field: fieldcrypt.FieldAgeVerificationDOB, Value: &row.DateOfBirth},
	); err != nil {
		return fmt.Errorf("encrypt verification: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	record.ID = row.ID
	return nil
}

// FindByID loads and decrypts a record.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AgeVerificationRecord, error) {
	var record models.AgeVerificationRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	if err := r.cipher.DecryptFields(
		fieldcrypt.Target{Field: fieldcrypt.FieldAgeVerificationIDNumber, Value: &record.IDNumber},
		fieldcrypt.Target{Field: fieldcrypt.FieldAgeVerificationDOB, Value: &record.DateOfBirth},
	); err != nil {
		return nil, fmt.Errorf("decrypt verification: %w", err)
	}
	return &record, nil
}
