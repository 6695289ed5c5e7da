// README: Coordinate resolver; turns free text into a point via the geocoder,
// with a single city-hint retry and an optional Redis cache in front.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"routecost/internal/log"
	"routecost/internal/metrics"
	"routecost/internal/types"
)

type Service struct {
	geocoder Geocoder
	store    *Store
	metrics  *metrics.Metrics
}

// NewService builds a resolver. store and m may be nil.
func NewService(geocoder Geocoder, store *Store, m *metrics.Metrics) *Service {
	return &Service{geocoder: geocoder, store: store, metrics: m}
}

// Resolve returns the coordinates for loc. It queries the full text first
// and, only when that yields no candidates, the city hint. It returns
// ErrNotFound when neither attempt produces a usable coordinate; geocoder
// transport errors are returned wrapped and are not retried.
func (s *Service) Resolve(ctx context.Context, loc Location) (types.Point, error) {
	text := normalize(loc.Text)
	if text == "" {
		return types.Point{}, fmt.Errorf("resolve %q: %w", loc.Text, ErrNotFound)
	}

	p, err := s.lookup(ctx, text)
	if err == nil {
		return p, nil
	}
	if !isNoCandidates(err) {
		return types.Point{}, err
	}

	hint := normalize(loc.CityHint)
	if hint == "" || hint == text {
		return types.Point{}, fmt.Errorf("resolve %q: %w", text, ErrNotFound)
	}
	log.Debug(ctx, "geocode retry with city hint",
		slog.String("query", text), slog.String("hint", hint))

	p, err = s.lookup(ctx, hint)
	if err == nil {
		return p, nil
	}
	if isNoCandidates(err) {
		return types.Point{}, fmt.Errorf("resolve %q (hint %q): %w", text, hint, ErrNotFound)
	}
	return types.Point{}, err
}

// errNoCandidates marks an empty geocoder answer, the only case that
// triggers the city-hint attempt.
type errNoCandidates struct{ query string }

func (e errNoCandidates) Error() string { return "no geocode candidates for " + strconv.Quote(e.query) }

func isNoCandidates(err error) bool {
	var nc errNoCandidates
	return errors.As(err, &nc)
}

func (s *Service) lookup(ctx context.Context, query string) (types.Point, error) {
	if s.store != nil {
		p, ok, err := s.store.Get(ctx, query)
		switch {
		case err != nil:
			log.Warn(ctx, "geocode cache read failed", log.Err(err))
			s.metrics.ObserveGeocode("cache", "error")
		case ok && !p.Valid():
			// Treated as a miss; the provider answer overwrites it.
			log.Warn(ctx, "geocode cache entry out of range", slog.Float64("lat", p.Lat), slog.Float64("lng", p.Lng))
			s.metrics.ObserveGeocode("cache", "invalid")
		case ok:
			s.metrics.ObserveGeocode("cache", "hit")
			return p, nil
		default:
			s.metrics.ObserveGeocode("cache", "miss")
		}
	}

	candidates, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		s.metrics.ObserveGeocode("provider", "error")
		return types.Point{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(candidates) == 0 {
		s.metrics.ObserveGeocode("provider", "empty")
		return types.Point{}, errNoCandidates{query: query}
	}

	p, err := parseCandidate(candidates[0])
	if err != nil {
		s.metrics.ObserveGeocode("provider", "invalid")
		return types.Point{}, fmt.Errorf("geocode %q: %v: %w", query, err, ErrNotFound)
	}
	s.metrics.ObserveGeocode("provider", "ok")

	if s.store != nil {
		if err := s.store.Put(ctx, query, p); err != nil {
			log.Warn(ctx, "geocode cache write failed", log.Err(err))
		}
	}
	return p, nil
}

func parseCandidate(c Candidate) (types.Point, error) {
	lat, err := strconv.ParseFloat(c.Lat, 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("parse lat %q", c.Lat)
	}
	lng, err := strconv.ParseFloat(c.Lon, 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("parse lon %q", c.Lon)
	}
	p := types.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return types.Point{}, fmt.Errorf("coordinate out of range %s", p)
	}
	return p, nil
}
