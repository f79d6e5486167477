package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> newest first, optional ?event= and ?limit=
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	q := nc.DB.WithContext(c.Request.Context()).Order("created_at DESC").Order("id DESC").Limit(limit)
	if event := c.Query("event"); event != "" {
		q = q.Where("event = ?", event)
	}

	var notifs []models.Notification
	if err := q.Find(&notifs).Error; err != nil {
		utils.RespondInternalError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

func (nc *NotificationController) GetNotification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var notif models.Notification
	if err := nc.DB.WithContext(c.Request.Context()).First(&notif, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
			return
		}
		utils.RespondInternalError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification detail", notif)
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	res := nc.DB.WithContext(c.Request.Context()).Delete(&models.Notification{}, id)
	if res.Error != nil {
		utils.RespondInternalError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("notification not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", nil)
}
