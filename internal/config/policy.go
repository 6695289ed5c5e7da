package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"routecost/internal/modules/pricing"
	"routecost/internal/modules/suggestion"
	"routecost/internal/types"
)

// PolicyFile is the on-disk shape of ROUTECOST_POLICY_FILE. Pricing keys
// overlay DefaultPolicy; a rates entry replaces that vehicle's whole rate.
type PolicyFile struct {
	Pricing    pricing.Policy `yaml:"pricing"`
	Suggestion struct {
		Rules   []suggestion.Rule `yaml:"rules"`
		Default *struct {
			Vehicle types.VehicleType     `yaml:"vehicle"`
			Tier    suggestion.DriverTier `yaml:"tier"`
		} `yaml:"default"`
	} `yaml:"suggestion"`
}

type Policy struct {
	Pricing   pricing.Policy
	Heuristic *suggestion.Heuristic
}

// DefaultPolicySet is used when no policy file is configured.
func DefaultPolicySet() Policy {
	return Policy{Pricing: pricing.DefaultPolicy(), Heuristic: suggestion.MustDefault()}
}

func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicySet(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(raw)
}

func ParsePolicy(raw []byte) (Policy, error) {
	pf := PolicyFile{Pricing: pricing.DefaultPolicy()}
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}
	for v, r := range pf.Pricing.Rates {
		if !v.Valid() {
			return Policy{}, fmt.Errorf("policy: unknown vehicle %q", v)
		}
		if r.KmPerLiter <= 0 || r.CapacityKg <= 0 || r.AvgSpeedKmh <= 0 {
			return Policy{}, fmt.Errorf("policy: %s: km_per_liter, capacity_kg and avg_speed_kmh must be positive", v)
		}
	}

	rules := suggestion.DefaultRules
	if pf.Suggestion.Rules != nil {
		rules = pf.Suggestion.Rules
	}
	fallback := suggestion.DefaultRule
	if d := pf.Suggestion.Default; d != nil {
		fallback.Vehicle, fallback.Tier = d.Vehicle, d.Tier
	}
	h, err := suggestion.NewHeuristic(rules, fallback)
	if err != nil {
		return Policy{}, fmt.Errorf("policy: %w", err)
	}
	return Policy{Pricing: pf.Pricing, Heuristic: h}, nil
}
