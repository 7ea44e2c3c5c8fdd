package models

// All lists every persisted model, in dependency order. Tests use it to build an sqlite schema;
// production schema comes from the SQL migrations.
func All() []any {
	return []any{
		&Store{},
		&Employee{},
		&Product{},
		&Customer{},
		&AgeVerificationRecord{},
		&Transaction{},
		&LineItem{},
		&ReceiptSequence{},
		&ReceiptPrint{},
	}
}
