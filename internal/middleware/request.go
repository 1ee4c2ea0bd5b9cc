package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/constants"
	"github.com/yukikurage/enterprise-core-api/internal/obs"
)

const maxRequestIDLength = 128

// RequestID propagates X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}

// Observe logs every request and records HTTP metrics labelled by route
// template.
func Observe(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := obs.TrackInFlight()
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		done()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		obs.ObserveHTTPRequest(c.Request.Method, route, status, elapsed)

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"duration":   elapsed.String(),
			"request_id": c.GetString(constants.ContextKeyRequestID),
		})
		if caller := CurrentCaller(c); caller.IsAuthenticated() {
			entry = entry.WithFields(logrus.Fields{
				"user_id":   caller.UserID,
				"tenant_id": caller.TenantID,
			})
		}
		if status >= 500 {
			entry.Warn("Request completed")
		} else {
			entry.Info("Request completed")
		}
	}
}
