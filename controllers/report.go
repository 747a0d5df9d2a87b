// controllers/report.go
package controllers

import (
	"net/http"

	"gympro-backend/models"
	"gympro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultTrendDays = 7

// ReportController serves the attendance trend and expiry projection
type ReportController struct {
	Dashboard *services.DashboardService
	Logger    *logrus.Logger
}

// GetAttendanceTrend returns one entry per day for the last ?days= days
func (rc *ReportController) GetAttendanceTrend(c *gin.Context) {
	days, ok := daysQuery(c, defaultTrendDays, services.MaxTrendDays)
	if !ok {
		return
	}
	trend, err := rc.Dashboard.GetAttendanceTrend(c.Request.Context(), days)
	if err != nil {
		respondWithServiceError(c, rc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

func (rc *ReportController) GetExpiringMemberships(c *gin.Context) {
	days, ok := daysQuery(c, models.ExpiringSoonDays, 0)
	if !ok {
		return
	}
	rows, err := rc.Dashboard.GetExpiringMemberships(c.Request.Context(), days)
	if err != nil {
		respondWithServiceError(c, rc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
