package middleware

import (
	"strconv"
	"time"

	"github.com/akuzmin/shortlinks/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics собирает количество и длительность HTTP-запросов
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestTotal.WithLabelValues(c.Request.Method, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, status).Observe(time.Since(start).Seconds())
	}
}
