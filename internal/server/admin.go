package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) CronStart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.cron.Start()})
}

func (s *Server) CronPause(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.cron.Pause()})
}

func (s *Server) CronResume(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.cron.Resume()})
}

func (s *Server) CronStop(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": s.cron.Stop()})
}

func (s *Server) CronStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.cron.Status())
}
