// README: Google Maps geocoder and directions router, selectable instead of
// the Nominatim/OSRM pair.
package maps

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	gmaps "googlemaps.github.io/maps"

	"routecost/internal/log"
	"routecost/internal/modules/location"
	"routecost/internal/modules/routing"
	"routecost/internal/types"
)

var (
	_ location.Geocoder = (*GoogleGeocoder)(nil)
	_ routing.Router    = (*GoogleRouter)(nil)
)

// NewGoogleClient creates a Maps client. baseURL is only set in tests.
func NewGoogleClient(apiKey, baseURL string, hc *http.Client) (*gmaps.Client, error) {
	opts := []gmaps.ClientOption{gmaps.WithAPIKey(apiKey)}
	if hc != nil {
		opts = append(opts, gmaps.WithHTTPClient(hc))
	}
	if baseURL != "" {
		opts = append(opts, gmaps.WithBaseURL(baseURL))
	}
	client, err := gmaps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// GoogleGeocoder handles interactions with the Google Geocoding API.
type GoogleGeocoder struct {
	client *gmaps.Client
	region string
}

func NewGoogleGeocoder(client *gmaps.Client, region string) *GoogleGeocoder {
	return &GoogleGeocoder{client: client, region: region}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, query string) (_ []location.Candidate, err error) {
	defer log.Time(ctx, "google.geocode")(&err)

	// The client reports ZERO_RESULTS as an empty slice with a nil error;
	// every other non-OK status comes back as "maps: <STATUS> - <message>".
	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{
		Address: query,
		Region:  g.region,
	})
	if err != nil {
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}

	out := make([]location.Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, location.Candidate{
			Lat:         strconv.FormatFloat(r.Geometry.Location.Lat, 'f', -1, 64),
			Lon:         strconv.FormatFloat(r.Geometry.Location.Lng, 'f', -1, 64),
			DisplayName: r.FormattedAddress,
		})
	}
	return out, nil
}

// GoogleRouter handles interactions with the Google Directions API.
type GoogleRouter struct {
	client *gmaps.Client
	region string
}

func NewGoogleRouter(client *gmaps.Client, region string) *GoogleRouter {
	return &GoogleRouter{client: client, region: region}
}

// Route sums the legs of the first driving route. Directions takes
// "lat,lng" strings, unlike OSRM.
func (r *GoogleRouter) Route(ctx context.Context, origin, dest types.Point) (_ routing.Leg, err error) {
	defer log.Time(ctx, "google.directions")(&err)

	req := &gmaps.DirectionsRequest{
		Origin:      latLngString(origin),
		Destination: latLngString(dest),
		Mode:        gmaps.TravelModeDriving,
		Region:      r.region,
	}

	routes, _, err := r.client.Directions(ctx, req)
	if err != nil {
		return routing.Leg{}, fmt.Errorf("directions api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return routing.Leg{}, fmt.Errorf("no route found")
	}

	var leg routing.Leg
	for _, l := range routes[0].Legs {
		leg.DistanceMeters += float64(l.Distance.Meters)
		leg.DurationSeconds += l.Duration.Seconds()
	}
	leg.Geometry = routes[0].OverviewPolyline.Points
	return leg, nil
}

func latLngString(p types.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}
