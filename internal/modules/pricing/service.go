// README: Cost estimator; itemises fuel, driver, tolls, maintenance,
// insurance and overhead for one route.
package pricing

import (
	"math"

	"routecost/internal/types"
)

type Service struct {
	policy Policy
}

func NewService(policy Policy) *Service {
	return &Service{policy: policy}
}

func (s *Service) Policy() Policy { return s.policy }

// Estimate prices the input. It is total: negative distances are clamped
// to zero and an unknown vehicle is priced with the largest known rate.
func (s *Service) Estimate(in Input) Breakdown {
	p := s.policy
	rate, vehicle := s.rateFor(in.Vehicle)
	distance := math.Max(in.DistanceKm, 0)

	actual := in.Cargo.ActualWeightKg()
	volumetric := in.Cargo.VolumetricWeightKg()
	chargeable := math.Max(actual, volumetric)

	loadFactor := 0.0
	if rate.CapacityKg > 0 {
		loadFactor = clamp(chargeable/rate.CapacityKg, 0, 1)
	}

	terrain := classifyTerrain(distance, in.DurationHours, p.HillySpeedKmh)
	terrainMul := 1.0
	if terrain == TerrainHilly && p.HillyMultiplier > 0 {
		terrainMul = p.HillyMultiplier
	}

	liters := 0.0
	if rate.KmPerLiter > 0 {
		liters = distance / rate.KmPerLiter * (1 + p.LoadFuelPenalty*loadFactor) * terrainMul
	}
	fuel := liters * p.FuelPricePerLiter

	hours := driveHours(distance, in.DurationHours, rate.AvgSpeedKmh)
	driver := hours*rate.DriverPerHour + drivingDays(hours, p.DrivingHoursPerDay)*rate.DailyAllowance

	toll := distance * rate.TollPerKm
	maintenance := distance * rate.MaintenancePerKm * terrainMul

	insurance := distance*rate.InsurancePerKm + chargeable*p.InsurancePerKg
	if in.Cargo != nil && in.Cargo.IsFragile && p.FragileMultiplier > 0 {
		insurance *= p.FragileMultiplier
	}
	if in.Cargo != nil && in.Cargo.IsHighValue && p.HighValueMultiplier > 0 {
		insurance *= p.HighValueMultiplier
	}

	b := Breakdown{
		VehicleType:        vehicle,
		Currency:           p.Currency,
		ChargeableWeightKg: round2(chargeable),
		ActualWeightKg:     round2(actual),
		VolumetricWeightKg: round2(volumetric),
		FuelLiters:         round2(liters),
		FuelCost:           round2(fuel),
		DriverCost:         round2(driver),
		TollCost:           round2(toll),
		MaintenanceCost:    round2(maintenance),
		InsuranceCost:      round2(insurance),
		TerrainType:        terrain,
		LoadFactor:         round2(loadFactor),
	}
	b.OverheadCost = round2((b.FuelCost + b.DriverCost + b.TollCost + b.MaintenanceCost + b.InsuranceCost) * p.OverheadRatio)
	b.TotalCost = round2(b.FuelCost + b.DriverCost + b.TollCost + b.MaintenanceCost + b.InsuranceCost + b.OverheadCost)
	return b
}

// FuelMoney formats the fuel component in the policy currency.
func (s *Service) FuelMoney(b Breakdown) types.Money {
	return types.MoneyFromMajor(b.FuelCost, s.policy.Currency, s.policy.CurrencySymbol)
}

func (s *Service) rateFor(v types.VehicleType) (Rate, types.VehicleType) {
	if r, ok := s.policy.Rates[v]; ok {
		return r, v
	}
	for i := len(types.VehicleClasses) - 1; i >= 0; i-- {
		c := types.VehicleClasses[i]
		if r, ok := s.policy.Rates[c]; ok {
			return r, c
		}
	}
	return Rate{}, v
}

func classifyTerrain(distanceKm, durationHours, hillySpeed float64) string {
	if durationHours <= 0 || distanceKm <= 0 || hillySpeed <= 0 {
		return TerrainPlain
	}
	if distanceKm/durationHours < hillySpeed {
		return TerrainHilly
	}
	return TerrainPlain
}

// driveHours uses the slower of the route's duration and the vehicle's
// own average speed; trucks rarely match car routing times.
func driveHours(distanceKm, durationHours, avgSpeed float64) float64 {
	h := math.Max(durationHours, 0)
	if avgSpeed > 0 {
		h = math.Max(h, distanceKm/avgSpeed)
	}
	return h
}

func drivingDays(hours, perDay float64) float64 {
	if hours <= 0 {
		return 0
	}
	if perDay <= 0 {
		return 1
	}
	return math.Ceil(hours / perDay)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// round2 rounds to the currency minor unit.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
