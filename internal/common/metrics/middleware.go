package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestDuration returns a gin middleware that records handler latency
// per route and status under the given service label.
func RequestDuration(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(service, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
