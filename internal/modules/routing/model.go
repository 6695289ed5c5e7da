// README: Route result model and the primary routing provider contract.
package routing

import (
	"context"
	"time"

	"routecost/internal/types"
)

type Provider string

const (
	ProviderPrimary  Provider = "primary"
	ProviderFallback Provider = "fallback"
)

const (
	// DefaultMaxAttempts is the total number of calls made to the primary router.
	DefaultMaxAttempts = 3
	// DefaultBackoffStep is multiplied by the failed attempt number to get the wait.
	DefaultBackoffStep = time.Second
	// RoadIndirectionFactor scales great-circle distance to approximate road distance.
	RoadIndirectionFactor = 1.3
	// FallbackSpeedKmh is the assumed average speed for fallback durations.
	FallbackSpeedKmh = 60.0
)

// Leg is the raw answer of a primary routing service.
type Leg struct {
	DistanceMeters  float64
	DurationSeconds float64
	// Geometry is an encoded polyline, empty when the provider sent none.
	Geometry string
}

// Router asks an external routing service for a driving route.
type Router interface {
	Route(ctx context.Context, origin, dest types.Point) (Leg, error)
}

// Result is what the calculator hands to the planner.
type Result struct {
	DistanceKm    float64
	DurationHours float64
	// Geometry is nil unless the primary service answered.
	Geometry *string
	Provider Provider
	Attempts int
}

// State is the retry state of one calculation.
type State int

const (
	Attempting State = iota
	Succeeded
	Degraded
)

func (s State) String() string {
	switch s {
	case Attempting:
		return "attempting"
	case Succeeded:
		return "succeeded"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}
