package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routecost/internal/modules/suggestion"
	"routecost/internal/types"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ProviderOSRM, cfg.Maps.Provider)
	assert.Equal(t, 10*time.Second, cfg.Maps.Timeout)
	assert.Equal(t, 3, cfg.Routing.Attempts)
	assert.Equal(t, time.Second, cfg.Routing.Backoff)
	assert.Equal(t, 24*time.Hour, cfg.Redis.GeocodeTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.DB.DSN)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ROUTECOST_HTTP_ADDR", ":9090")
	t.Setenv("ROUTECOST_PROVIDER", "Google")
	t.Setenv("ROUTECOST_GOOGLE_MAPS_KEY", "k")
	t.Setenv("ROUTECOST_ROUTE_ATTEMPTS", "5")
	t.Setenv("ROUTECOST_ROUTE_BACKOFF", "250ms")
	t.Setenv("ROUTECOST_HTTP_TIMEOUT", "2.5")
	t.Setenv("ROUTECOST_REDIS_ADDR", "redis:6379")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, ProviderGoogle, cfg.Maps.Provider)
	assert.Equal(t, 5, cfg.Routing.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Routing.Backoff)
	assert.Equal(t, 2500*time.Millisecond, cfg.Maps.Timeout)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown provider", map[string]string{"ROUTECOST_PROVIDER": "here"}},
		{"google without key", map[string]string{"ROUTECOST_PROVIDER": "google"}},
		{"zero attempts", map[string]string{"ROUTECOST_ROUTE_ATTEMPTS": "0"}},
		{"non-numeric attempts", map[string]string{"ROUTECOST_ROUTE_ATTEMPTS": "abc"}},
		{"garbage backoff", map[string]string{"ROUTECOST_ROUTE_BACKOFF": "soon"}},
		{"garbage geocode ttl", map[string]string{"ROUTECOST_GEOCODE_TTL": "x"}},
		{"garbage timeout", map[string]string{"ROUTECOST_HTTP_TIMEOUT": "NaN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_ReportsEveryMalformedValue(t *testing.T) {
	t.Setenv("ROUTECOST_ROUTE_ATTEMPTS", "abc")
	t.Setenv("ROUTECOST_GEOCODE_TTL", "x")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `ROUTECOST_ROUTE_ATTEMPTS: invalid integer "abc"`)
	assert.Contains(t, err.Error(), `ROUTECOST_GEOCODE_TTL: invalid duration "x"`)
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ROUTECOST_HTTP_ADDR=:7070\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("ROUTECOST_HTTP_ADDR")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoadPolicy_EmptyPathIsDefault(t *testing.T) {
	p, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, "INR", p.Pricing.Currency)
	assert.Equal(t, types.VehicleMiniTruck, p.Heuristic.Suggest(10, nil).Vehicle)
}

func TestParsePolicy_Overlay(t *testing.T) {
	raw := []byte(`
pricing:
  fuel_price_per_liter: 102.5
  rates:
    light_truck:
      km_per_liter: 9
      capacity_kg: 3000
      avg_speed_kmh: 45
      driver_per_hour: 200
suggestion:
  rules:
    - {max_distance_km: 100, max_weight_kg: 1000, vehicle: light_truck, tier: experienced}
  default: {vehicle: heavy_truck, tier: expert}
`)
	p, err := ParsePolicy(raw)
	require.NoError(t, err)

	assert.InDelta(t, 102.5, p.Pricing.FuelPricePerLiter, 1e-9)
	assert.Equal(t, "INR", p.Pricing.Currency)
	assert.InDelta(t, 0.10, p.Pricing.OverheadRatio, 1e-9)
	assert.InDelta(t, 9.0, p.Pricing.Rates[types.VehicleLightTruck].KmPerLiter, 1e-9)
	assert.InDelta(t, 14.0, p.Pricing.Rates[types.VehicleMiniTruck].KmPerLiter, 1e-9)

	got := p.Heuristic.Suggest(20, nil)
	assert.Equal(t, types.VehicleLightTruck, got.Vehicle)
	assert.Equal(t, suggestion.TierExperienced, got.Tier)
	assert.Equal(t, types.VehicleHeavyTruck, p.Heuristic.Suggest(150, nil).Vehicle)
}

func TestParsePolicy_Rejects(t *testing.T) {
	for name, raw := range map[string]string{
		"bad yaml":        "pricing: [",
		"unknown vehicle": "pricing:\n  rates:\n    spaceship: {km_per_liter: 1, capacity_kg: 1, avg_speed_kmh: 1}\n",
		"zero capacity":   "pricing:\n  rates:\n    mini_truck: {km_per_liter: 10, avg_speed_kmh: 40}\n",
		"unordered rules": "suggestion:\n  rules:\n    - {max_distance_km: 100, max_weight_kg: 100, vehicle: light_truck, tier: senior}\n    - {max_distance_km: 50, max_weight_kg: 100, vehicle: light_truck, tier: senior}\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
