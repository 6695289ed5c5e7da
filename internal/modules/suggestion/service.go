// README: Suggestion heuristic; first matching rule wins, the default rule
// keeps it total.
package suggestion

import (
	"errors"
	"fmt"

	"routecost/internal/types"
)

type Heuristic struct {
	rules    []Rule
	fallback Rule
}

// NewHeuristic validates the table: limits, vehicle rank and tier rank
// must be non-decreasing down the list, and the default must rank at
// least as high as the last rule. This ordering is what makes a longer
// distance never pick a smaller vehicle.
func NewHeuristic(rules []Rule, fallback Rule) (*Heuristic, error) {
	if !fallback.Vehicle.Valid() || fallback.Tier.Rank() < 0 {
		return nil, errors.New("suggestion: default rule needs a known vehicle and tier")
	}
	all := append(append([]Rule(nil), rules...), fallback)
	for i, r := range all {
		if !r.Vehicle.Valid() {
			return nil, fmt.Errorf("suggestion: rule %d: unknown vehicle %q", i, r.Vehicle)
		}
		if r.Tier.Rank() < 0 {
			return nil, fmt.Errorf("suggestion: rule %d: unknown tier %q", i, r.Tier)
		}
		if i == 0 {
			continue
		}
		prev := all[i-1]
		if i < len(rules) && (r.MaxDistanceKm < prev.MaxDistanceKm || r.MaxWeightKg < prev.MaxWeightKg) {
			return nil, fmt.Errorf("suggestion: rule %d: limits must not decrease", i)
		}
		if r.Vehicle.Rank() < prev.Vehicle.Rank() || r.Tier.Rank() < prev.Tier.Rank() {
			return nil, fmt.Errorf("suggestion: rule %d: vehicle and tier must not decrease", i)
		}
	}
	return &Heuristic{rules: append([]Rule(nil), rules...), fallback: fallback}, nil
}

// MustDefault returns the heuristic over DefaultRules.
func MustDefault() *Heuristic {
	h, err := NewHeuristic(DefaultRules, DefaultRule)
	if err != nil {
		panic(err)
	}
	return h
}

// Suggest never fails. Fragile or high-value cargo moves the driver one
// tier up.
func (h *Heuristic) Suggest(distanceKm float64, cargo *types.Cargo) Suggestion {
	weight := cargo.ChargeableWeightKg()

	rule := h.fallback
	for _, r := range h.rules {
		if r.matches(distanceKm, weight) {
			rule = r
			break
		}
	}

	tier := rule.Tier
	if cargo != nil && (cargo.IsFragile || cargo.IsHighValue) {
		tier = bumpTier(tier)
	}
	return Suggestion{Vehicle: rule.Vehicle, Tier: tier}
}

func bumpTier(t DriverTier) DriverTier {
	i := t.Rank()
	if i < 0 || i+1 >= len(tiers) {
		return t
	}
	return tiers[i+1]
}
