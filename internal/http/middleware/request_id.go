// README: Request ID middleware; propagates X-Request-ID into the request context.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"routecost/internal/log"
)

const HeaderRequestID = "X-Request-ID"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(log.WithRequestID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
