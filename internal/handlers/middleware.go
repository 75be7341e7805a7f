package handler

import (
	"strconv"
	"strings"
	"time"

	"creator-performance-ledger/internal/metrics"
	"creator-performance-ledger/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// actorFrom reads the caller identity forwarded by the gateway.
func actorFrom(c *gin.Context) models.Actor {
	return models.Actor{
		UserID: strings.TrimSpace(c.GetHeader(headerUserID)),
		Role:   strings.TrimSpace(c.GetHeader(headerUserRole)),
	}
}

// RequestMetrics counts requests by route template and logs each one.
func RequestMetrics(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		log.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"route":       route,
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("request")
	}
}
