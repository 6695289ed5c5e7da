// README: Cargo profile and vehicle classes shared by the heuristic and pricing.
package types

import "math"

// VolumetricDivisor converts cm³ to volumetric kg.
const VolumetricDivisor = 5000.0

// Cargo describes the load. Nil dimension pointers mean "not supplied".
type Cargo struct {
	TotalWeightKg *float64
	LengthCm      *float64
	WidthCm       *float64
	HeightCm      *float64
	IsFragile     bool
	IsHighValue   bool
}

// ActualWeightKg is the declared weight, 0 when absent or negative.
func (c *Cargo) ActualWeightKg() float64 {
	if c == nil || c.TotalWeightKg == nil {
		return 0
	}
	return math.Max(*c.TotalWeightKg, 0)
}

// VolumetricWeightKg is L×W×H/5000 when all three dimensions are
// present, 0 otherwise.
func (c *Cargo) VolumetricWeightKg() float64 {
	if c == nil || c.LengthCm == nil || c.WidthCm == nil || c.HeightCm == nil {
		return 0
	}
	v := (*c.LengthCm) * (*c.WidthCm) * (*c.HeightCm) / VolumetricDivisor
	return math.Max(v, 0)
}

// ChargeableWeightKg is the greater of actual and volumetric weight.
func (c *Cargo) ChargeableWeightKg() float64 {
	return math.Max(c.ActualWeightKg(), c.VolumetricWeightKg())
}

type VehicleType string

const (
	VehicleMiniTruck   VehicleType = "mini_truck"
	VehicleLightTruck  VehicleType = "light_truck"
	VehicleMediumTruck VehicleType = "medium_truck"
	VehicleHeavyTruck  VehicleType = "heavy_truck"
)

// VehicleClasses lists vehicle types from smallest to largest.
var VehicleClasses = []VehicleType{
	VehicleMiniTruck,
	VehicleLightTruck,
	VehicleMediumTruck,
	VehicleHeavyTruck,
}

// Rank is the vehicle's position in VehicleClasses, -1 if unknown.
func (v VehicleType) Rank() int {
	for i, c := range VehicleClasses {
		if c == v {
			return i
		}
	}
	return -1
}

func (v VehicleType) Valid() bool { return v.Rank() >= 0 }
