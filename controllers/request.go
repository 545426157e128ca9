package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

// pathID parses the named path parameter. A malformed id cannot match any
// record, so it is reported as not found.
func pathID(c *gin.Context, param, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.RespondWithAppError(c, utils.NotFound(notFound))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithAppError(c, utils.InvalidInput("Invalid input: "+err.Error()))
		return false
	}
	return true
}

// storeError maps a repository error to the response taxonomy.
func storeError(err error, notFound, conflict, internal string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return utils.NotFound(notFound)
	case conflict != "" && errors.Is(err, repository.ErrDuplicate):
		return utils.Conflict(conflict)
	default:
		return utils.Internal(internal, err)
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(utils.ContextUserID))
	if err != nil {
		utils.RespondWithAppError(c, utils.Unauthorized("Invalid token"))
		return uuid.Nil, false
	}
	return id, true
}
