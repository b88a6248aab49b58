package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/sdr-records-go/internal/metrics"
)

// Metrics counts handled requests by route template
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.HTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
