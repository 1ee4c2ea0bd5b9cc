package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/enterprise-core-api/internal/database"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewHealthHandler(db *gorm.DB, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

// Health reports whether the database answers
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := database.Ping(ctx, h.db); err != nil {
		h.log.WithError(err).Warn("Health check failed")
		apierrors.ServiceUnavailable(c, "Database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Enterprise Core API is running",
	})
}
