package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taker-api/internal/errors"
	"github.com/yukikurage/taker-api/internal/middleware"
	"github.com/yukikurage/taker-api/internal/models"
)

// requireActor returns the actor loaded by middleware.LoadActor, answering 401
// when there is none.
func requireActor(c *gin.Context) (*models.User, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return nil, false
	}
	return actor, true
}

func parseIDParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label)
		return 0, false
	}
	return id, true
}

func parseOptionalUintQuery(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &v, true
}
