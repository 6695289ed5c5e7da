// README: OSRM-compatible driving router (GET /route/v1/driving/lon,lat;lon,lat).
package maps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"routecost/internal/log"
	"routecost/internal/modules/routing"
	"routecost/internal/types"
)

var _ routing.Router = (*OSRMRouter)(nil)

type OSRMRouter struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewOSRMRouter wants the server root, e.g. https://router.project-osrm.org.
func NewOSRMRouter(client *http.Client, baseURL, userAgent string) (*OSRMRouter, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("router base url is empty")
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &OSRMRouter{client: client, baseURL: baseURL, userAgent: userAgent}, nil
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance *float64 `json:"distance"`
		Duration *float64 `json:"duration"`
		Geometry string   `json:"geometry"`
	} `json:"routes"`
}

// routeURL renders coordinates as longitude,latitude, the order OSRM expects.
func (r *OSRMRouter) routeURL(origin, dest types.Point) string {
	return fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=simplified",
		r.baseURL,
		formatCoord(origin.Lng), formatCoord(origin.Lat),
		formatCoord(dest.Lng), formatCoord(dest.Lat),
	)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (r *OSRMRouter) Route(ctx context.Context, origin, dest types.Point) (_ routing.Leg, err error) {
	defer log.Time(ctx, "osrm.route")(&err)

	var resp osrmResponse
	if err := getJSON(ctx, r.client, r.routeURL(origin, dest), r.userAgent, &resp); err != nil {
		return routing.Leg{}, fmt.Errorf("osrm route: %w", err)
	}
	if resp.Code != "" && resp.Code != "Ok" {
		return routing.Leg{}, fmt.Errorf("osrm route: code %s: %s", resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 {
		return routing.Leg{}, errors.New("osrm route: no routes returned")
	}

	first := resp.Routes[0]
	if first.Distance == nil || first.Duration == nil {
		return routing.Leg{}, errors.New("osrm route: missing distance or duration")
	}
	return routing.Leg{
		DistanceMeters:  *first.Distance,
		DurationSeconds: *first.Duration,
		Geometry:        first.Geometry,
	}, nil
}
