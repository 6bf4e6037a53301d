package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
)

// CloudWatchMetrics records one API request metric per call when the client is enabled
func CloudWatchMetrics(client *metrics.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !client.Enabled() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		client.RecordAPIRequest(c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
