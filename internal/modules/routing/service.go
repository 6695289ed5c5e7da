// README: Route calculator; retries the primary router with linear backoff
// and degrades to a great-circle estimate instead of failing.
package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"googlemaps.github.io/maps"

	"routecost/internal/log"
	"routecost/internal/metrics"
	"routecost/internal/modules/location"
	"routecost/internal/types"
)

type Calculator struct {
	primary     Router
	maxAttempts int
	backoffStep time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	metrics     *metrics.Metrics
}

// NewCalculator builds a calculator around primary. primary may be nil,
// in which case every call degrades immediately.
func NewCalculator(primary Router, opts ...Option) *Calculator {
	c := &Calculator{
		primary:     primary,
		maxAttempts: DefaultMaxAttempts,
		backoffStep: DefaultBackoffStep,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Next is the transition function of the retry state machine. Given the
// number of the attempt that just finished and its error, it returns the
// next state and how long to wait before the next attempt.
func Next(attempt, maxAttempts int, err error, step time.Duration) (State, time.Duration) {
	if err == nil {
		return Succeeded, 0
	}
	if attempt >= maxAttempts {
		return Degraded, 0
	}
	return Attempting, time.Duration(attempt) * step
}

// Route returns the road route between origin and dest. Primary-service
// failures never surface: after the last failed attempt the result is
// the fallback estimate. The only error is ctx cancellation.
func (c *Calculator) Route(ctx context.Context, origin, dest types.Point) (Result, error) {
	state := Attempting
	if c.primary == nil {
		state = Degraded
	}

	var (
		attempt int
		leg     Leg
		lastErr error
	)
	for state == Attempting {
		attempt++
		leg, lastErr = c.attempt(ctx, origin, dest)
		if lastErr != nil {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			log.Warn(ctx, "routing attempt failed",
				slog.Int("attempt", attempt), slog.Int("max_attempts", c.maxAttempts), log.Err(lastErr))
		}

		var wait time.Duration
		state, wait = Next(attempt, c.maxAttempts, lastErr, c.backoffStep)
		if state == Attempting && wait > 0 {
			if err := c.sleep(ctx, wait); err != nil {
				return Result{}, err
			}
		}
	}

	var res Result
	switch state {
	case Succeeded:
		res = fromLeg(leg)
	case Degraded:
		res = Fallback(origin, dest)
		log.Warn(ctx, "routing degraded to fallback estimate",
			slog.Int("attempts", attempt), slog.Float64("distance_km", res.DistanceKm))
	}
	res.Attempts = attempt
	c.metrics.ObserveRoute(string(res.Provider), attempt)
	return res, nil
}

func (c *Calculator) attempt(ctx context.Context, origin, dest types.Point) (leg Leg, err error) {
	defer log.Time(ctx, "routing.primary")(&err)

	leg, err = c.primary.Route(ctx, origin, dest)
	if err != nil {
		return Leg{}, err
	}
	return validateLeg(leg)
}

var errInvalidLeg = errors.New("invalid route from provider")

// validateLeg rejects legs with unusable figures. A geometry that decodes
// to fewer than two points cannot be drawn and is dropped from the leg.
func validateLeg(leg Leg) (Leg, error) {
	if math.IsNaN(leg.DistanceMeters) || math.IsInf(leg.DistanceMeters, 0) || leg.DistanceMeters < 0 {
		return Leg{}, fmt.Errorf("%w: distance %v", errInvalidLeg, leg.DistanceMeters)
	}
	if math.IsNaN(leg.DurationSeconds) || math.IsInf(leg.DurationSeconds, 0) || leg.DurationSeconds < 0 {
		return Leg{}, fmt.Errorf("%w: duration %v", errInvalidLeg, leg.DurationSeconds)
	}
	if leg.Geometry == "" {
		return leg, nil
	}
	n, err := geometryPoints(leg.Geometry)
	if err != nil {
		return Leg{}, err
	}
	if n < 2 {
		leg.Geometry = ""
	}
	return leg, nil
}

// geometryPoints decodes poly and returns its point count. Truncated
// strings and out-of-range points are errors.
func geometryPoints(poly string) (int, error) {
	if !polylineComplete(poly) {
		return 0, fmt.Errorf("%w: geometry is truncated", errInvalidLeg)
	}
	path, err := maps.DecodePolyline(poly)
	if err != nil {
		return 0, fmt.Errorf("%w: geometry: %v", errInvalidLeg, err)
	}
	for _, ll := range path {
		if !(types.Point{Lat: ll.Lat, Lng: ll.Lng}).Valid() {
			return 0, fmt.Errorf("%w: geometry point %v out of range", errInvalidLeg, ll)
		}
	}
	return len(path), nil
}

// polylineComplete reports whether poly holds only polyline characters and
// ends on a whole lat/lng pair. maps.DecodePolyline silently stops at a
// partial value, so truncation has to be caught here.
func polylineComplete(poly string) bool {
	values := 0
	for i := 0; i < len(poly); i++ {
		c := poly[i]
		if c < 63 || c > 126 {
			return false
		}
		if c-63 < 0x20 {
			values++
		}
	}
	return poly[len(poly)-1]-63 < 0x20 && values%2 == 0
}

func fromLeg(leg Leg) Result {
	res := Result{
		DistanceKm:    leg.DistanceMeters / 1000,
		DurationHours: leg.DurationSeconds / 3600,
		Provider:      ProviderPrimary,
	}
	if leg.Geometry != "" {
		g := leg.Geometry
		res.Geometry = &g
	}
	return res
}

// Fallback estimates a road route from the great-circle distance.
func Fallback(origin, dest types.Point) Result {
	km := location.HaversineKm(origin, dest) * RoadIndirectionFactor
	return Result{
		DistanceKm:    km,
		DurationHours: km / FallbackSpeedKmh,
		Provider:      ProviderFallback,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
