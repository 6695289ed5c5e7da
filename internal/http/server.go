// README: API gateway; registers HTTP routes and delegates to the route planner.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routecost/internal/http/handlers"
	"routecost/internal/http/middleware"
)

type ServerDeps struct {
	Planner handlers.Planner
	Logger  *slog.Logger

	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

type Server struct {
	planner  handlers.Planner
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		planner:  deps.Planner,
		logger:   logger,
		gatherer: deps.Gatherer,
	}
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(s.logger), middleware.Recovery())

	route := handlers.NewRouteHandler(s.planner)
	r.POST("/route", route.Plan)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	return r
}
