package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
)

// TaxRates resolves the sales tax rate for a store's jurisdiction.
type TaxRates struct {
	fallback decimal.Decimal
	rates    map[string]decimal.Decimal
}

// NewTaxRates parses the tax configuration section.
func NewTaxRates(cfg config.TaxConfig) (*TaxRates, error) {
	fallback, err := cfg.DefaultDecimal()
	if err != nil {
		return nil, err
	}
	rates, err := cfg.Jurisdictions()
	if err != nil {
		return nil, err
	}
	return &TaxRates{fallback: fallback, rates: rates}, nil
}

// Rate returns the jurisdiction rate, falling back to the default when unknown.
func (t *TaxRates) Rate(jurisdiction string) decimal.Decimal {
	if rate, ok := t.rates[strings.ToUpper(strings.TrimSpace(jurisdiction))]; ok {
		return rate
	}
	return t.fallback
}
