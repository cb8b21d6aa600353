package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/rankcheck/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// PoolStatter reports browser page pool utilisation.
type PoolStatter interface {
	Stats() models.PoolStats
}

// JobCounter reports how many jobs are stored.
type JobCounter interface {
	Len() int
}

// Health returns a handler for GET /api/v1/health.
//
// Reports pool utilisation and degrades status when every page is busy,
// since new checks would then queue.
func Health(ps PoolStatter, jc JobCounter, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := ps.Stats()

		status := "healthy"
		if stats.MaxPages > 0 && stats.ActivePages >= stats.MaxPages {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Jobs:      jc.Len(),
			Version:   Version,
		})
	}
}
