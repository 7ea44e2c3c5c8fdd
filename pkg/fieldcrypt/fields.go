package fieldcrypt

import (
	"fmt"
	"strings"
)

// Field tags a sensitive column. The tag is bound into every ciphertext as associated data.
type Field string

const (
	FieldCustomerEmail           Field = "customers.email"
	FieldCustomerPhone           Field = "customers.phone"
	FieldCustomerDateOfBirth     Field = "customers.date_of_birth"
	FieldAgeVerificationIDNumber Field = "age_verifications.id_number"
	FieldAgeVerificationDOB      Field = "age_verifications.date_of_birth"
)

// Table returns the table half of the tag.
func (f Field) Table() string {
	table, _, _ := strings.Cut(string(f), ".")
	return table
}

// SensitiveFields lists the encrypted columns per table.
var SensitiveFields = map[string][]Field{
	"customers": {
		FieldCustomerEmail,
		FieldCustomerPhone,
		FieldCustomerDateOfBirth,
	},
	"age_verifications": {
		FieldAgeVerificationIDNumber,
		FieldAgeVerificationDOB,
	},
}

// IsSensitive reports whether field is registered for table.
func IsSensitive(table string, field Field) bool {
	for _, f := range SensitiveFields[table] {
		if f == field {
			return true
		}
	}
	return false
}

// Target binds a field tag to the string value it protects. A nil Value is skipped.
type Target struct {
	Field Field
	Value *string
}

func checkRegistered(targets []Target) error {
	for _, t := range targets {
		if !IsSensitive(t.Field.Table(), t.Field) {
			return fmt.Errorf("fieldcrypt: %q is not a registered sensitive field", t.Field)
		}
	}
	return nil
}

// EncryptFields replaces every target value with its encrypted form in place. Every target must
// be registered in SensitiveFields; nothing is written when one is not.
func (c *Cipher) EncryptFields(targets ...Target) error {
	if err := checkRegistered(targets); err != nil {
		return err
	}
	for _, t := range targets {
		if t.Value == nil {
			continue
		}
		enc, err := c.Encrypt(t.Field, *t.Value)
		if err != nil {
			return err
		}
		*t.Value = enc
	}
	return nil
}

// DecryptFields replaces every target value with its plaintext in place.
func (c *Cipher) DecryptFields(targets ...Target) error {
	if err := checkRegistered(targets); err != nil {
		return err
	}
	for _, t := range targets {
		if t.Value == nil {
			continue
		}
		plain, err := c.Decrypt(t.Field, *t.Value)
		if err != nil {
			return err
		}
		*t.Value = plain
	}
	return nil
}
