// controllers/reminder.go
package controllers

import (
	"net/http"

	"gympro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReminderController triggers the expiry reminder run on demand.
type ReminderController struct {
	Reminders *services.ReminderService
	Logger    *logrus.Logger
}

func (rc *ReminderController) SendExpiryReminders(c *gin.Context) {
	if rc.Reminders == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Reminders are not configured"})
		return
	}
	sent, err := rc.Reminders.SendExpiryReminders(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, rc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
