package pricing

import (
	"fmt"

	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
)

// TierTable maps cumulative spend onto a loyalty tier.
type TierTable struct {
	tiers []config.TierThreshold
}

// NewTierTable validates that thresholds are strictly ascending.
func NewTierTable(tiers []config.TierThreshold) (*TierTable, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("tier table requires at least one tier")
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].MinCents <= tiers[i-1].MinCents {
			return nil, fmt.Errorf("tier %s must have a higher threshold than %s", tiers[i].Name, tiers[i-1].Name)
		}
	}
	out := make([]config.TierThreshold, len(tiers))
	copy(out, tiers)
	return &TierTable{tiers: out}, nil
}

// Resolve returns the highest tier whose threshold is at or below lifetimeSpendCents, or ""
// when spend is below the first band.
func (t *TierTable) Resolve(lifetimeSpendCents int64) string {
	tier := ""
	for _, band := range t.tiers {
		if lifetimeSpendCents < band.MinCents {
			break
		}
		tier = band.Name
	}
	return tier
}
