// README: Vehicle/driver suggestion rules.
package suggestion

import (
	"math"

	"routecost/internal/types"
)

type DriverTier string

const (
	TierEntry       DriverTier = "entry"
	TierExperienced DriverTier = "experienced"
	TierSenior      DriverTier = "senior"
	TierExpert      DriverTier = "expert"
)

// tiers is ordered from least to most experienced.
var tiers = []DriverTier{TierEntry, TierExperienced, TierSenior, TierExpert}

var tierLabels = map[DriverTier]string{
	TierEntry:       "Entry (0-2 years)",
	TierExperienced: "Experienced (2-5 years)",
	TierSenior:      "Senior (5-10 years)",
	TierExpert:      "Expert (10+ years)",
}

func (t DriverTier) Rank() int {
	for i, v := range tiers {
		if v == t {
			return i
		}
	}
	return -1
}

// Label is the human-readable experience band.
func (t DriverTier) Label() string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return string(t)
}

// Rule matches when distance and chargeable weight are both within its limits.
type Rule struct {
	MaxDistanceKm float64           `yaml:"max_distance_km"`
	MaxWeightKg   float64           `yaml:"max_weight_kg"`
	Vehicle       types.VehicleType `yaml:"vehicle"`
	Tier          DriverTier        `yaml:"tier"`
}

func (r Rule) matches(distanceKm, weightKg float64) bool {
	return distanceKm <= r.MaxDistanceKm && weightKg <= r.MaxWeightKg
}

type Suggestion struct {
	Vehicle types.VehicleType
	Tier    DriverTier
}

// DefaultRules is the stock policy. The catch-all is DefaultRule.
var DefaultRules = []Rule{
	{MaxDistanceKm: 50, MaxWeightKg: 750, Vehicle: types.VehicleMiniTruck, Tier: TierEntry},
	{MaxDistanceKm: 200, MaxWeightKg: 2500, Vehicle: types.VehicleLightTruck, Tier: TierExperienced},
	{MaxDistanceKm: 600, MaxWeightKg: 7000, Vehicle: types.VehicleMediumTruck, Tier: TierSenior},
}

var DefaultRule = Rule{
	MaxDistanceKm: math.Inf(1),
	MaxWeightKg:   math.Inf(1),
	Vehicle:       types.VehicleHeavyTruck,
	Tier:          TierExpert,
}
