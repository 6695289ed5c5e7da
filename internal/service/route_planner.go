// README: Route planning orchestrator; resolves, routes, suggests and prices a shipment.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"routecost/internal/log"
	"routecost/internal/metrics"
	"routecost/internal/modules/location"
	"routecost/internal/modules/pricing"
	"routecost/internal/modules/routing"
	"routecost/internal/modules/suggestion"
	"routecost/internal/types"
)

var (
	ErrMissingInput      = errors.New("origin and destination are required")
	ErrLocationNotFound  = errors.New("location not found")
	ErrComputationFailed = errors.New("route computation failed")

	// ErrResolverUnavailable accompanies ErrComputationFailed when the
	// geocoder could not be reached at all.
	ErrResolverUnavailable = errors.New("location resolver unavailable")
)

type Resolver interface {
	Resolve(ctx context.Context, loc location.Location) (types.Point, error)
}

type RouteCalculator interface {
	Route(ctx context.Context, origin, dest types.Point) (routing.Result, error)
}

type Suggester interface {
	Suggest(distanceKm float64, cargo *types.Cargo) suggestion.Suggestion
}

type Estimator interface {
	Estimate(in pricing.Input) pricing.Breakdown
	FuelMoney(b pricing.Breakdown) types.Money
}

// QuotePublisher announces finished plans to downstream consumers.
type QuotePublisher interface {
	PublishQuote(ctx context.Context, q Quote) error
}

type PlanRequest struct {
	Origin          string
	Destination     string
	OriginCity      string
	DestinationCity string
	Cargo           *types.Cargo
}

type Plan struct {
	Origin      types.Point
	Destination types.Point
	Route       routing.Result
	Suggestion  suggestion.Suggestion
	Cost        pricing.Breakdown
	FuelCost    types.Money
}

// Quote is the event payload published after a successful plan.
type Quote struct {
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	OriginCoords  [2]float64        `json:"originCoords"`
	DestCoords    [2]float64        `json:"destinationCoords"`
	DistanceKm    float64           `json:"distanceKm"`
	DurationHours float64           `json:"durationHours"`
	Provider      routing.Provider  `json:"provider"`
	VehicleType   types.VehicleType `json:"vehicleType"`
	DriverTier    string            `json:"driverTier"`
	TotalCost     float64           `json:"totalCost"`
	Currency      string            `json:"currency"`
	QuotedAt      time.Time         `json:"quotedAt"`
}

// RoutePlanner sequences resolver → calculator → heuristic → estimator.
type RoutePlanner struct {
	resolver   Resolver
	calculator RouteCalculator
	suggester  Suggester
	estimator  Estimator
	publisher  QuotePublisher
	metrics    *metrics.Metrics
	now        func() time.Time
}

type PlannerDeps struct {
	Resolver   Resolver
	Calculator RouteCalculator
	Suggester  Suggester
	Estimator  Estimator

	// Publisher and Metrics are optional.
	Publisher QuotePublisher
	Metrics   *metrics.Metrics
}

func NewRoutePlanner(deps PlannerDeps) *RoutePlanner {
	return &RoutePlanner{
		resolver:   deps.Resolver,
		calculator: deps.Calculator,
		suggester:  deps.Suggester,
		estimator:  deps.Estimator,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		now:        time.Now,
	}
}

// Plan resolves both endpoints, routes between them and prices the trip.
// Routing-service outages do not fail the plan; they only reduce the
// fidelity of the result.
func (p *RoutePlanner) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	start := p.now()
	origin := strings.TrimSpace(req.Origin)
	dest := strings.TrimSpace(req.Destination)
	if origin == "" || dest == "" {
		return nil, ErrMissingInput
	}

	from, err := p.resolve(ctx, "origin", location.Location{Text: origin, CityHint: req.OriginCity})
	if err != nil {
		return nil, err
	}
	to, err := p.resolve(ctx, "destination", location.Location{Text: dest, CityHint: req.DestinationCity})
	if err != nil {
		return nil, err
	}

	route, err := p.calculator.Route(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: route: %w", ErrComputationFailed, err)
	}
	if invalidMeasure(route.DistanceKm) || invalidMeasure(route.DurationHours) {
		return nil, fmt.Errorf("%w: route produced distance %v, duration %v",
			ErrComputationFailed, route.DistanceKm, route.DurationHours)
	}

	sugg := p.suggester.Suggest(route.DistanceKm, req.Cargo)
	cost := p.estimator.Estimate(pricing.Input{
		DistanceKm:    route.DistanceKm,
		DurationHours: route.DurationHours,
		Vehicle:       sugg.Vehicle,
		Cargo:         req.Cargo,
	})

	plan := &Plan{
		Origin:      from,
		Destination: to,
		Route:       route,
		Suggestion:  sugg,
		Cost:        cost,
		FuelCost:    p.estimator.FuelMoney(cost),
	}

	log.Info(ctx, "route planned",
		slog.String("provider", string(route.Provider)),
		slog.Int("attempts", route.Attempts),
		slog.Float64("distance_km", route.DistanceKm),
		slog.String("vehicle", string(sugg.Vehicle)),
		slog.Float64("total_cost", cost.TotalCost),
	)
	p.publish(ctx, origin, dest, plan)
	p.metrics.ObservePlan(p.now().Sub(start).Seconds())
	return plan, nil
}

func (p *RoutePlanner) resolve(ctx context.Context, which string, loc location.Location) (types.Point, error) {
	pt, err := p.resolver.Resolve(ctx, loc)
	if err == nil {
		return pt, nil
	}
	if errors.Is(err, location.ErrNotFound) {
		log.Info(ctx, "location not found", slog.String("endpoint", which), slog.String("text", loc.Text))
		return types.Point{}, fmt.Errorf("%w: %s %q", ErrLocationNotFound, which, loc.Text)
	}
	log.Error(ctx, "resolve failed", slog.String("endpoint", which), log.Err(err))
	return types.Point{}, fmt.Errorf("%w: %w: %s: %w", ErrComputationFailed, ErrResolverUnavailable, which, err)
}

func (p *RoutePlanner) publish(ctx context.Context, origin, dest string, plan *Plan) {
	if p.publisher == nil {
		return
	}
	q := Quote{
		Origin:        origin,
		Destination:   dest,
		OriginCoords:  plan.Origin.LatLng(),
		DestCoords:    plan.Destination.LatLng(),
		DistanceKm:    plan.Route.DistanceKm,
		DurationHours: plan.Route.DurationHours,
		Provider:      plan.Route.Provider,
		VehicleType:   plan.Suggestion.Vehicle,
		DriverTier:    string(plan.Suggestion.Tier),
		TotalCost:     plan.Cost.TotalCost,
		Currency:      plan.Cost.Currency,
		QuotedAt:      p.now().UTC(),
	}
	if err := p.publisher.PublishQuote(ctx, q); err != nil {
		log.Warn(ctx, "publish quote failed", log.Err(err))
	}
}

func invalidMeasure(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}
