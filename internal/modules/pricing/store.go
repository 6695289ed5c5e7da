// README: Pricing store backed by PostgreSQL; per-vehicle rate overrides.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"routecost/internal/types"
)

var ErrRateNotFound = errors.New("vehicle rate not found")

const rateColumns = `vehicle_type, km_per_liter, capacity_kg, avg_speed_kmh, driver_per_hour,
	daily_allowance, toll_per_km, maintenance_per_km, insurance_per_km`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func scanRate(row pgx.Row) (types.VehicleType, Rate, error) {
	var (
		vehicle string
		r       Rate
	)
	err := row.Scan(&vehicle, &r.KmPerLiter, &r.CapacityKg, &r.AvgSpeedKmh, &r.DriverPerHour,
		&r.DailyAllowance, &r.TollPerKm, &r.MaintenancePerKm, &r.InsurancePerKm)
	return types.VehicleType(vehicle), r, err
}

func (s *Store) GetRate(ctx context.Context, vehicle types.VehicleType) (Rate, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rateColumns+` FROM vehicle_rates WHERE vehicle_type = $1 AND active`, string(vehicle))
	_, r, err := scanRate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, fmt.Errorf("get rate %s: %w", vehicle, err)
	}
	return r, nil
}

// ListRates returns every active rate keyed by vehicle type. Unknown
// vehicle types are skipped.
func (s *Store) ListRates(ctx context.Context) (map[types.VehicleType]Rate, error) {
	rows, err := s.db.Query(ctx, `SELECT `+rateColumns+` FROM vehicle_rates WHERE active ORDER BY vehicle_type`)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	out := make(map[types.VehicleType]Rate)
	for rows.Next() {
		v, r, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		if !v.Valid() {
			continue
		}
		out[v] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	return out, nil
}

// UpsertRate writes one vehicle's rate; used by seeding and tests.
func (s *Store) UpsertRate(ctx context.Context, vehicle types.VehicleType, r Rate) error {
	_, err := s.db.Exec(ctx, `
INSERT INTO vehicle_rates (`+rateColumns+`, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
ON CONFLICT (vehicle_type) DO UPDATE SET
	km_per_liter = EXCLUDED.km_per_liter,
	capacity_kg = EXCLUDED.capacity_kg,
	avg_speed_kmh = EXCLUDED.avg_speed_kmh,
	driver_per_hour = EXCLUDED.driver_per_hour,
	daily_allowance = EXCLUDED.daily_allowance,
	toll_per_km = EXCLUDED.toll_per_km,
	maintenance_per_km = EXCLUDED.maintenance_per_km,
	insurance_per_km = EXCLUDED.insurance_per_km,
	active = TRUE`,
		string(vehicle), r.KmPerLiter, r.CapacityKg, r.AvgSpeedKmh, r.DriverPerHour,
		r.DailyAllowance, r.TollPerKm, r.MaintenancePerKm, r.InsurancePerKm)
	if err != nil {
		return fmt.Errorf("upsert rate %s: %w", vehicle, err)
	}
	return nil
}

// LoadPolicy overlays the stored rates on base.
func (s *Store) LoadPolicy(ctx context.Context, base Policy) (Policy, error) {
	rates, err := s.ListRates(ctx)
	if err != nil {
		return base, err
	}
	return base.WithRates(rates), nil
}
