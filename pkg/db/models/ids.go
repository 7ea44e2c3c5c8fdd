package models

import "github.com/google/uuid"

// ensureID assigns a new random id when the caller did not supply one. Ids are generated in the
// application so every dialect behaves the same.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
