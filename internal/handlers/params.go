package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/yukikurage/enterprise-core-api/internal/errors"
)

// pathID parses the :id path parameter. It writes a 400 and returns false
// when the value is not a UUID.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body. It writes a 400 and returns false on
// failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}
