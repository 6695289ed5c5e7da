// README: Nominatim-style geocoder (GET ?q=&format=json&limit=1).
package maps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"routecost/internal/log"
	"routecost/internal/modules/location"
)

var _ location.Geocoder = (*NominatimGeocoder)(nil)

// NominatimGeocoder calls an OpenStreetMap Nominatim compatible search endpoint.
type NominatimGeocoder struct {
	client    *http.Client
	endpoint  string
	userAgent string
}

// NewNominatimGeocoder wants the full search endpoint, e.g.
// https://nominatim.openstreetmap.org/search.
func NewNominatimGeocoder(client *http.Client, endpoint, userAgent string) (*NominatimGeocoder, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("geocoder endpoint is empty")
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &NominatimGeocoder{client: client, endpoint: endpoint, userAgent: userAgent}, nil
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (_ []location.Candidate, err error) {
	defer log.Time(ctx, "nominatim.geocode")(&err)

	u, err := url.Parse(g.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse geocoder endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	var places []nominatimPlace
	if err := getJSON(ctx, g.client, u.String(), g.userAgent, &places); err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}

	out := make([]location.Candidate, 0, len(places))
	for _, p := range places {
		out = append(out, location.Candidate{Lat: p.Lat, Lon: p.Lon, DisplayName: p.DisplayName})
	}
	return out, nil
}
