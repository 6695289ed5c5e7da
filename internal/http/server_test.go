package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routecost/internal/maps"
	"routecost/internal/metrics"
	"routecost/internal/modules/location"
	"routecost/internal/modules/pricing"
	"routecost/internal/modules/routing"
	"routecost/internal/modules/suggestion"
	"routecost/internal/service"
)

// fakeProviders serves both the geocoder and the OSRM router.
func fakeProviders(t *testing.T, routerUp bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/search":
			switch r.URL.Query().Get("q") {
			case "CityA":
				_, _ = w.Write([]byte(`[{"lat":"12.9716","lon":"77.5946"}]`))
			case "CityB":
				_, _ = w.Write([]byte(`[{"lat":"13.0827","lon":"80.2707"}]`))
			default:
				_, _ = w.Write([]byte(`[]`))
			}
		case strings.HasPrefix(r.URL.Path, "/route/v1/driving/"):
			if !routerUp {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"code":"Ok","routes":[{"distance":200000,"duration":14400,"geometry":"_p~iF~ps|U_ulLnnqC_mqNvxq` + "`" + `@"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func buildServer(t *testing.T, providers *httptest.Server) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	geocoder, err := maps.NewNominatimGeocoder(providers.Client(), providers.URL+"/search", "routecost-test")
	require.NoError(t, err)
	router, err := maps.NewOSRMRouter(providers.Client(), providers.URL, "routecost-test")
	require.NoError(t, err)

	planner := service.NewRoutePlanner(service.PlannerDeps{
		Resolver: location.NewService(geocoder, nil, m),
		Calculator: routing.NewCalculator(router,
			routing.WithMetrics(m),
			routing.WithSleeper(func(context.Context, time.Duration) error { return nil })),
		Suggester: suggestion.MustDefault(),
		Estimator: pricing.NewService(pricing.DefaultPolicy()),
		Metrics:   m,
	})
	return NewServer(ServerDeps{Planner: planner, Gatherer: reg}).Routes(), reg
}

func postRoute(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/route", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServer_RouteEndToEnd(t *testing.T) {
	r, _ := buildServer(t, fakeProviders(t, true))

	w := postRoute(r, `{"origin":"CityA","destination":"CityB","totalWeight":500}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var resp struct {
		Distance          string     `json:"distance"`
		Duration          string     `json:"duration"`
		FuelCost          string     `json:"fuelCost"`
		VehicleType       string     `json:"vehicleType"`
		RouteGeometry     *string    `json:"routeGeometry"`
		OriginCoords      [2]float64 `json:"originCoords"`
		DestinationCoords [2]float64 `json:"destinationCoords"`
		Provider          string     `json:"provider"`
		CostBreakdown     struct {
			FuelCost        float64 `json:"fuelCost"`
			DriverCost      float64 `json:"driverCost"`
			TollCost        float64 `json:"tollCost"`
			MaintenanceCost float64 `json:"maintenanceCost"`
			InsuranceCost   float64 `json:"insuranceCost"`
			OverheadCost    float64 `json:"overheadCost"`
			TotalCost       float64 `json:"totalCost"`
		} `json:"costBreakdown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "200.0 km", resp.Distance)
	assert.Equal(t, "4 hr", resp.Duration)
	assert.True(t, strings.HasPrefix(resp.FuelCost, "₹"), resp.FuelCost)
	assert.Equal(t, "light_truck", resp.VehicleType)
	require.NotNil(t, resp.RouteGeometry)
	assert.Equal(t, [2]float64{12.9716, 77.5946}, resp.OriginCoords)
	assert.Equal(t, [2]float64{13.0827, 80.2707}, resp.DestinationCoords)
	assert.Equal(t, "primary", resp.Provider)

	b := resp.CostBreakdown
	sum := b.FuelCost + b.DriverCost + b.TollCost + b.MaintenanceCost + b.InsuranceCost + b.OverheadCost
	assert.InDelta(t, b.TotalCost, sum, 0.01)
}

func TestServer_RouterDownFallsBack(t *testing.T) {
	r, _ := buildServer(t, fakeProviders(t, false))

	w := postRoute(r, `{"origin":"CityA","destination":"CityB"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fallback", resp["provider"])
	assert.Nil(t, resp["routeGeometry"])
}

func TestServer_Errors(t *testing.T) {
	r, _ := buildServer(t, fakeProviders(t, true))

	assert.Equal(t, http.StatusBadRequest, postRoute(r, `{"origin":"CityA"}`).Code)
	assert.Equal(t, http.StatusNotFound, postRoute(r, `{"origin":"CityA","destination":"Atlantis"}`).Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	r, _ := buildServer(t, fakeProviders(t, true))
	require.Equal(t, http.StatusOK, postRoute(r, `{"origin":"CityA","destination":"CityB"}`).Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `routecost_route_results_total{provider="primary"} 1`)
}

func TestServer_NoGathererNoMetricsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewServer(ServerDeps{}).Routes()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
