package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"routecost/internal/config"
	"routecost/internal/events"
	"routecost/internal/infra"
	"routecost/internal/log"
	"routecost/internal/maps"
	"routecost/internal/metrics"
	"routecost/internal/modules/location"
	"routecost/internal/modules/pricing"
	"routecost/internal/modules/routing"
	"routecost/internal/service"
)

// app is the wired dependency graph shared by serve and plan.
type app struct {
	planner  *service.RoutePlanner
	registry *prometheus.Registry
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires providers, optional infrastructure and the planner.
// Redis, Postgres and RabbitMQ are optional; an unreachable one is logged
// and skipped so quoting keeps working.
func buildApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(a.registry)

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	pricingPolicy := policy.Pricing
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			log.Warn(ctx, "rate overrides disabled", log.Err(err))
		} else {
			a.closers = append(a.closers, pool.Close)
			if pricingPolicy, err = pricing.NewStore(pool).LoadPolicy(ctx, pricingPolicy); err != nil {
				a.Close()
				return nil, err
			}
		}
	}

	geocoder, router, err := buildProviders(cfg.Maps)
	if err != nil {
		a.Close()
		return nil, err
	}

	var cache *location.Store
	if cfg.Redis.Addr != "" {
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn(ctx, "geocode cache disabled", log.Err(err))
		} else {
			a.closers = append(a.closers, func() { _ = client.Close() })
			cache = location.NewStore(client, cfg.Redis.GeocodeTTL)
		}
	}

	var publisher service.QuotePublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := infra.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Warn(ctx, "quote events disabled", log.Err(err))
		} else {
			a.closers = append(a.closers, func() { _ = conn.Close() })
			pub, err := events.NewQuotePublisher(conn)
			if err != nil {
				log.Warn(ctx, "quote events disabled", log.Err(err))
			} else {
				a.closers = append(a.closers, func() { _ = pub.Close() })
				publisher = pub
			}
		}
	}

	a.planner = service.NewRoutePlanner(service.PlannerDeps{
		Resolver: location.NewService(geocoder, cache, m),
		Calculator: routing.NewCalculator(router,
			routing.WithMaxAttempts(cfg.Routing.Attempts),
			routing.WithBackoffStep(cfg.Routing.Backoff),
			routing.WithMetrics(m),
		),
		Suggester: policy.Heuristic,
		Estimator: pricing.NewService(pricingPolicy),
		Publisher: publisher,
		Metrics:   m,
	})

	log.Info(ctx, "routecost wired",
		slog.String("provider", cfg.Maps.Provider),
		slog.Bool("geocode_cache", cache != nil),
		slog.Bool("quote_events", publisher != nil),
		slog.String("currency", pricingPolicy.Currency),
	)
	return a, nil
}

func buildProviders(cfg config.MapsConfig) (location.Geocoder, routing.Router, error) {
	hc := maps.NewHTTPClient(cfg.Timeout)
	switch cfg.Provider {
	case config.ProviderGoogle:
		client, err := maps.NewGoogleClient(cfg.GoogleKey, "", hc)
		if err != nil {
			return nil, nil, err
		}
		return maps.NewGoogleGeocoder(client, cfg.Region), maps.NewGoogleRouter(client, cfg.Region), nil
	case config.ProviderOSRM:
		geocoder, err := maps.NewNominatimGeocoder(hc, cfg.GeocoderURL, cfg.UserAgent)
		if err != nil {
			return nil, nil, err
		}
		router, err := maps.NewOSRMRouter(hc, cfg.RouterURL, cfg.UserAgent)
		if err != nil {
			return nil, nil, err
		}
		return geocoder, router, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
