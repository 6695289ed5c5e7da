// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"routecost/internal/log"
	"routecost/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeRouteError maps planner errors to status codes. Internal failures
// are logged with their cause and reported generically.
func writeRouteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingInput):
		writeError(c, http.StatusBadRequest, "Origin and destination are required")
	case errors.Is(err, service.ErrLocationNotFound):
		writeError(c, http.StatusNotFound, "Could not find one or both locations")
	case errors.Is(err, service.ErrResolverUnavailable):
		log.Error(c.Request.Context(), "location lookup unavailable", log.Err(err),
			slog.String("path", c.FullPath()))
		writeError(c, http.StatusInternalServerError, "Failed to calculate route: location lookup service unavailable")
	default:
		log.Error(c.Request.Context(), "route request failed", log.Err(err),
			slog.String("path", c.FullPath()))
		writeError(c, http.StatusInternalServerError, "Failed to calculate route")
	}
}
