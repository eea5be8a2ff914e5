package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	snapshotdomain "github.com/opsgrid/facilitypulse/internal/snapshot/domain"
	"gorm.io/gorm"
)

const listExecutionsLimit = 20

type snapshotFacilityEntry struct {
	FacilityID  string    `json:"facility_id"`
	Occupancy   int       `json:"occupancy"`
	EnergyKWH   float64   `json:"energy_kwh"`
	WaterLiters float64   `json:"water_liters"`
	OpenTickets int       `json:"open_tickets"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type latestSnapshotResponse struct {
	Version       string                  `json:"version"`
	SnapshotID    snowflake.ID            `json:"snapshot_id"`
	ExecutionTime time.Time               `json:"execution_time"`
	Status        string                  `json:"status"`
	Facilities    []snapshotFacilityEntry `json:"facilities"`
}

type executionEntry struct {
	SnapshotID    snowflake.ID `json:"snapshot_id"`
	ExecutionTime time.Time    `json:"execution_time"`
	Status        string       `json:"status"`
	DurationMS    int64        `json:"duration_ms"`
}

func (s *Server) SnapshotCount(c *gin.Context) {
	total, err := s.snapshotRepo.CountExecutions(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_executions": total})
}

func (s *Server) LatestSnapshot(c *gin.Context) {
	ctx := c.Request.Context()

	execution, err := s.snapshotRepo.LatestExecution(ctx, s.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = snapshotdomain.ErrNoData
		}
		AbortWithError(c, err)
		return
	}

	metrics, err := s.snapshotRepo.MetricsBySnapshot(ctx, s.db, execution.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	facilities := make([]snapshotFacilityEntry, 0, len(metrics))
	for _, m := range metrics {
		facilities = append(facilities, snapshotFacilityEntry{
			FacilityID:  m.FacilityID,
			Occupancy:   m.Occupancy,
			EnergyKWH:   m.EnergyKWH,
			WaterLiters: m.WaterLiters,
			OpenTickets: m.OpenTickets,
			RecordedAt:  m.RecordedAt,
		})
	}

	c.JSON(http.StatusOK, latestSnapshotResponse{
		Version:       "v1",
		SnapshotID:    execution.ID,
		ExecutionTime: execution.ExecutionTime,
		Status:        string(execution.Status),
		Facilities:    facilities,
	})
}

func (s *Server) ListSnapshots(c *gin.Context) {
	executions, err := s.snapshotRepo.ListExecutions(c.Request.Context(), s.db, listExecutionsLimit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entries := make([]executionEntry, 0, len(executions))
	for _, e := range executions {
		entries = append(entries, executionEntry{
			SnapshotID:    e.ID,
			ExecutionTime: e.ExecutionTime,
			Status:        string(e.Status),
			DurationMS:    e.DurationMS,
		})
	}

	c.JSON(http.StatusOK, entries)
}
