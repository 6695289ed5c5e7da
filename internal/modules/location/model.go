// README: Location input and geocoder contract for the coordinate resolver.
package location

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a location cannot be turned into coordinates.
var ErrNotFound = errors.New("location not found")

// Location is a free-text place (name, city or full address) plus an
// optional city-only hint tried when the full text yields nothing.
type Location struct {
	Text     string
	CityHint string
}

// Candidate is a raw geocoder hit. Lat/Lon are kept as the provider's
// strings and parsed by the resolver.
type Candidate struct {
	Lat         string
	Lon         string
	DisplayName string
}

// Geocoder looks up candidates for a free-text query, best match first.
// An empty slice with a nil error means "no match".
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Candidate, error)
}

// normalize collapses whitespace so cache keys and outbound queries are stable.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
