package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity is the authenticated employee behind a request.
type Identity struct {
	EmployeeID uuid.UUID
	StoreID    uuid.UUID
	Role       enums.EmployeeRole
	AccessID   string
}

// IdentityFromContext returns the identity seeded by Auth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxIdentity).(Identity)
	return id, ok
}

// WithIdentity injects an identity, used by Auth and by handler tests.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, id)
}
