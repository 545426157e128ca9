package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 500
)

type NotificationController struct {
	logs *repository.NotificationRepository
}

func NewNotificationController(logs *repository.NotificationRepository) *NotificationController {
	return &NotificationController{logs: logs}
}

// GetNotifications lists recorded send attempts, newest first, optionally
// filtered by kind.
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	kind := c.Query("kind")
	switch kind {
	case "", models.NotificationVisitReceipt, models.NotificationDailySummary:
	default:
		utils.RespondWithAppError(c, utils.InvalidInput("Unknown notification kind"))
		return
	}

	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxNotificationLimit {
			utils.RespondWithAppError(c, utils.InvalidInput("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	logs, err := nc.logs.ListByKind(c.Request.Context(), kind, limit)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to retrieve notifications", err))
		return
	}
	c.JSON(http.StatusOK, logs)
}
