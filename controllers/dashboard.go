package controllers

import (
	"context"
	"net/http"
	"time"

	"gympro-backend/metrics"
	"gympro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const dashboardCacheKey = "dashboard:stats"

// SnapshotCache stores short-lived JSON snapshots.
type SnapshotCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardController serves the snapshot statistics. Cache is optional.
type DashboardController struct {
	Dashboard *services.DashboardService
	Cache     SnapshotCache
	CacheTTL  time.Duration
	Logger    *logrus.Logger
}

func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	ctx := c.Request.Context()

	if dc.Cache != nil {
		var cached services.DashboardStats
		hit, err := dc.Cache.GetJSON(ctx, dashboardCacheKey, &cached)
		if err != nil {
			dc.Logger.WithError(err).Warn("Dashboard cache read failed")
		}
		if hit {
			metrics.DashboardCache.WithLabelValues("hit").Inc()
			c.JSON(http.StatusOK, cached)
			return
		}
		metrics.DashboardCache.WithLabelValues("miss").Inc()
	}

	stats, err := dc.Dashboard.GetStats(ctx)
	if err != nil {
		respondWithServiceError(c, dc.Logger, err)
		return
	}

	if dc.Cache != nil {
		if err := dc.Cache.SetJSON(ctx, dashboardCacheKey, stats, dc.CacheTTL); err != nil {
			dc.Logger.WithError(err).Warn("Dashboard cache write failed")
		}
	}
	c.JSON(http.StatusOK, stats)
}
