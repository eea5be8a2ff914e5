package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck pings the database and reports whether the snapshot timer
// loop is alive. A failed ping returns 503 with the unhealthy payload
// rather than going through the error middleware, so probes always get a
// body they can parse.
func (s *Server) HealthCheck(c *gin.Context) {
	var one int
	err := s.db.WithContext(c.Request.Context()).Raw("SELECT 1").Scan(&one).Error
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"database":          "reachable",
		"scheduler_running": s.cron.Status().SchedulerRunning,
	})
}

func (s *Server) PublicSummary(c *gin.Context) {
	ctx := c.Request.Context()

	executions, err := s.snapshotRepo.CountExecutions(ctx, s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	metrics, err := s.snapshotRepo.CountMetrics(ctx, s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service":         s.cfg.AppName,
		"total_snapshots": executions,
		"total_records":   metrics,
	})
}
