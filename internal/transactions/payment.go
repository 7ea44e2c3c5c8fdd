package transactions

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Uptivity/justsell-pos-sub002/pkg/enums"
)

// PaymentRequest asks the processor to authorize a non-cash tender.
type PaymentRequest struct {
	StoreID     uuid.UUID
	Method      enums.PaymentMethod
	AmountCents int64
}

// Authorization is the processor's answer.
type Authorization struct {
	Approved  bool
	Reference string
	Reason    string
}

// PaymentProcessor authorizes card and gift card tenders.
type PaymentProcessor interface {
	Authorize(ctx context.Context, req PaymentRequest) (Authorization, error)
}

// StubProcessor approves every request with a synthetic reference. It stands in for a real
// gateway integration.
type StubProcessor struct{}

func (StubProcessor) Authorize(ctx context.Context, req PaymentRequest) (Authorization, error) {
	if err := ctx.Err(); err != nil {
		return Authorization{}, err
	}
	if !req.Method.RequiresAuthorization() {
		return Authorization{}, fmt.Errorf("payment method %s does not use the processor", req.Method)
	}
	return Authorization{
		Approved:  true,
		Reference: "stub_" + uuid.NewString(),
	}, nil
}
