// README: POST /route handler; binds the request, runs the planner and shapes the response.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"routecost/internal/modules/pricing"
	"routecost/internal/modules/routing"
	"routecost/internal/service"
	"routecost/internal/types"
)

type Planner interface {
	Plan(ctx context.Context, req service.PlanRequest) (*service.Plan, error)
}

type RouteHandler struct {
	planner Planner
}

func NewRouteHandler(p Planner) *RouteHandler {
	return &RouteHandler{planner: p}
}

type routeReq struct {
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	OriginCity      string   `json:"originCity"`
	DestinationCity string   `json:"destinationCity"`
	TotalWeight     *float64 `json:"totalWeight" binding:"omitempty,gte=0"`
	Length          *float64 `json:"length" binding:"omitempty,gte=0"`
	Width           *float64 `json:"width" binding:"omitempty,gte=0"`
	Height          *float64 `json:"height" binding:"omitempty,gte=0"`
	IsFragile       bool     `json:"isFragile"`
	IsHighValue     bool     `json:"isHighValue"`
}

type RouteResponse struct {
	Distance          string            `json:"distance"`
	Duration          string            `json:"duration"`
	FuelCost          string            `json:"fuelCost"`
	DriverExperience  string            `json:"driverExperience"`
	VehicleType       types.VehicleType `json:"vehicleType"`
	RouteGeometry     *string           `json:"routeGeometry"`
	OriginCoords      [2]float64        `json:"originCoords"`
	DestinationCoords [2]float64        `json:"destinationCoords"`
	CostBreakdown     pricing.Breakdown `json:"costBreakdown"`
	Provider          routing.Provider  `json:"provider"`
}

func (r routeReq) cargo() *types.Cargo {
	if r.TotalWeight == nil && r.Length == nil && r.Width == nil && r.Height == nil && !r.IsFragile && !r.IsHighValue {
		return nil
	}
	return &types.Cargo{
		TotalWeightKg: r.TotalWeight,
		LengthCm:      r.Length,
		WidthCm:       r.Width,
		HeightCm:      r.Height,
		IsFragile:     r.IsFragile,
		IsHighValue:   r.IsHighValue,
	}
}

func (h *RouteHandler) Plan(c *gin.Context) {
	var req routeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	plan, err := h.planner.Plan(c.Request.Context(), service.PlanRequest{
		Origin:          req.Origin,
		Destination:     req.Destination,
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		Cargo:           req.cargo(),
	})
	if err != nil {
		writeRouteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, NewRouteResponse(plan))
}

// NewRouteResponse shapes a plan into the public JSON contract.
func NewRouteResponse(p *service.Plan) RouteResponse {
	return RouteResponse{
		Distance:          formatDistance(p.Route.DistanceKm),
		Duration:          formatDuration(p.Route.DurationHours),
		FuelCost:          p.FuelCost.String(),
		DriverExperience:  p.Suggestion.Tier.Label(),
		VehicleType:       p.Suggestion.Vehicle,
		RouteGeometry:     p.Route.Geometry,
		OriginCoords:      p.Origin.LatLng(),
		DestinationCoords: p.Destination.LatLng(),
		CostBreakdown:     p.Cost,
		Provider:          p.Route.Provider,
	}
}
