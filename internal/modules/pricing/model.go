// README: Pricing policy tables and the cost breakdown model.
package pricing

import "routecost/internal/types"

// Rate holds the per-vehicle coefficients.
type Rate struct {
	KmPerLiter       float64 `yaml:"km_per_liter"`
	CapacityKg       float64 `yaml:"capacity_kg"`
	AvgSpeedKmh      float64 `yaml:"avg_speed_kmh"`
	DriverPerHour    float64 `yaml:"driver_per_hour"`
	DailyAllowance   float64 `yaml:"daily_allowance"`
	TollPerKm        float64 `yaml:"toll_per_km"`
	MaintenancePerKm float64 `yaml:"maintenance_per_km"`
	InsurancePerKm   float64 `yaml:"insurance_per_km"`
}

// Policy is the full pricing table. Every coefficient is named and can be
// overridden from the policy file or the vehicle_rates table.
type Policy struct {
	Currency       string `yaml:"currency"`
	CurrencySymbol string `yaml:"currency_symbol"`

	FuelPricePerLiter float64 `yaml:"fuel_price_per_liter"`
	// LoadFuelPenalty is the extra fuel fraction burnt at full load.
	LoadFuelPenalty float64 `yaml:"load_fuel_penalty"`

	InsurancePerKg      float64 `yaml:"insurance_per_kg"`
	FragileMultiplier   float64 `yaml:"fragile_multiplier"`
	HighValueMultiplier float64 `yaml:"high_value_multiplier"`

	// OverheadRatio is applied to the sum of the other five components.
	OverheadRatio float64 `yaml:"overhead_ratio"`

	DrivingHoursPerDay float64 `yaml:"driving_hours_per_day"`

	// Routes slower than HillySpeedKmh on average are classed hilly, which
	// scales fuel and maintenance by HillyMultiplier.
	HillySpeedKmh   float64 `yaml:"hilly_speed_kmh"`
	HillyMultiplier float64 `yaml:"hilly_multiplier"`

	Rates map[types.VehicleType]Rate `yaml:"rates"`
}

const (
	TerrainPlain = "plain"
	TerrainHilly = "hilly"
)

// DefaultPolicy returns the stock INR tariff.
func DefaultPolicy() Policy {
	return Policy{
		Currency:            "INR",
		CurrencySymbol:      "₹",
		FuelPricePerLiter:   95,
		LoadFuelPenalty:     0.25,
		InsurancePerKg:      0.05,
		FragileMultiplier:   1.25,
		HighValueMultiplier: 1.5,
		OverheadRatio:       0.10,
		DrivingHoursPerDay:  10,
		HillySpeedKmh:       35,
		HillyMultiplier:     1.2,
		Rates: map[types.VehicleType]Rate{
			types.VehicleMiniTruck: {
				KmPerLiter: 14, CapacityKg: 750, AvgSpeedKmh: 40,
				DriverPerHour: 150, DailyAllowance: 400,
				TollPerKm: 1.0, MaintenancePerKm: 1.5, InsurancePerKm: 0.5,
			},
			types.VehicleLightTruck: {
				KmPerLiter: 10, CapacityKg: 2500, AvgSpeedKmh: 45,
				DriverPerHour: 180, DailyAllowance: 500,
				TollPerKm: 2.0, MaintenancePerKm: 2.5, InsurancePerKm: 0.8,
			},
			types.VehicleMediumTruck: {
				KmPerLiter: 6, CapacityKg: 7000, AvgSpeedKmh: 50,
				DriverPerHour: 220, DailyAllowance: 600,
				TollPerKm: 3.5, MaintenancePerKm: 4.0, InsurancePerKm: 1.2,
			},
			types.VehicleHeavyTruck: {
				KmPerLiter: 3.5, CapacityKg: 16000, AvgSpeedKmh: 50,
				DriverPerHour: 260, DailyAllowance: 750,
				TollPerKm: 5.5, MaintenancePerKm: 6.0, InsurancePerKm: 1.8,
			},
		},
	}
}

// WithRates returns a copy of p whose rates are replaced by overrides
// where present.
func (p Policy) WithRates(overrides map[types.VehicleType]Rate) Policy {
	rates := make(map[types.VehicleType]Rate, len(p.Rates)+len(overrides))
	for k, v := range p.Rates {
		rates[k] = v
	}
	for k, v := range overrides {
		rates[k] = v
	}
	p.Rates = rates
	return p
}

// Input is what the estimator prices. DurationHours is optional; when
// zero the vehicle's average speed is used.
type Input struct {
	DistanceKm    float64
	DurationHours float64
	Vehicle       types.VehicleType
	Cargo         *types.Cargo
}

// Breakdown is the itemised cost. TotalCost equals the sum of the six
// cost components exactly, all rounded to the minor unit.
type Breakdown struct {
	VehicleType        types.VehicleType `json:"vehicleType"`
	Currency           string            `json:"currency"`
	ChargeableWeightKg float64           `json:"chargeableWeightKg"`
	ActualWeightKg     float64           `json:"actualWeightKg"`
	VolumetricWeightKg float64           `json:"volumetricWeightKg"`
	FuelCost           float64           `json:"fuelCost"`
	FuelLiters         float64           `json:"fuelLiters"`
	DriverCost         float64           `json:"driverCost"`
	TollCost           float64           `json:"tollCost"`
	MaintenanceCost    float64           `json:"maintenanceCost"`
	InsuranceCost      float64           `json:"insuranceCost"`
	OverheadCost       float64           `json:"overheadCost"`
	TotalCost          float64           `json:"totalCost"`
	TerrainType        string            `json:"terrainType"`
	LoadFactor         float64           `json:"loadFactor"`
}
