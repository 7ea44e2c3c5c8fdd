package transactions

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Uptivity/justsell-pos-sub002/pkg/db"
)

const (
	receiptPrefix     = "R"
	receiptDayLayout  = "060102"
	receiptTimeLayout = "060102150405"
	// receipt_number unique index; the sqlite spelling is matched for tests and dev mode.
	receiptConstraint       = "transactions_receipt_number_key"
	receiptConstraintSQLite = "transactions.receipt_number"
)

// ReceiptNumberer issues receipt numbers inside the checkout transaction.
type ReceiptNumberer interface {
	Next(ctx context.Context, tx *gorm.DB, at time.Time) (string, error)
}

// SequenceNumberer builds receipt numbers from the timestamp and a per-day counter kept in
// receipt_sequences: R + YYMMDDHHMMSS + 4-digit sequence.
type SequenceNumberer struct{}

const nextSequenceSQL = `INSERT INTO receipt_sequences (day, last_value) VALUES (?, 1)
ON CONFLICT (day) DO UPDATE SET last_value = receipt_sequences.last_value + 1
RETURNING last_value`

func (SequenceNumberer) Next(ctx context.Context, tx *gorm.DB, at time.Time) (string, error) {
	at = at.UTC()
	var seq int
	if err := tx.WithContext(ctx).Raw(nextSequenceSQL, at.Format(receiptDayLayout)).Scan(&seq).Error; err != nil {
		return "", fmt.Errorf("next receipt sequence: %w", err)
	}
	if seq <= 0 {
		return "", fmt.Errorf("next receipt sequence: no value returned")
	}
	return FormatReceiptNumber(at, seq), nil
}

// FormatReceiptNumber renders a receipt number. Sequences beyond 9999 keep their full width.
func FormatReceiptNumber(at time.Time, seq int) string {
	return fmt.Sprintf("%s%s%04d", receiptPrefix, at.UTC().Format(receiptTimeLayout), seq)
}

func isReceiptCollision(err error) bool {
	return db.IsUniqueViolation(err, receiptConstraint) || db.IsUniqueViolation(err, receiptConstraintSQLite)
}
