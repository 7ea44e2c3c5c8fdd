package enums

// PaymentMethod describes how the customer settles a sale at the register.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodGiftCard PaymentMethod = "GIFT_CARD"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodGiftCard,
}

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool { return isMember(validPaymentMethods, p) }

// RequiresAuthorization reports whether the tender must be authorized by a processor.
func (p PaymentMethod) RequiresAuthorization() bool {
	return p == PaymentMethodCard || p == PaymentMethodGiftCard
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parseMember(validPaymentMethods, value, "payment method")
}
