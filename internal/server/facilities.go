package server

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	snapshotdomain "github.com/opsgrid/facilitypulse/internal/snapshot/domain"
	"gorm.io/gorm"
)

const facilityHistoryLimit = 50

type historyRecord struct {
	SnapshotID  snowflake.ID `json:"snapshot_id"`
	Occupancy   int          `json:"occupancy"`
	EnergyKWH   float64      `json:"energy_kwh"`
	WaterLiters float64      `json:"water_liters"`
	OpenTickets int          `json:"open_tickets"`
	RecordedAt  time.Time    `json:"recorded_at"`
}

func (s *Server) FacilityHistory(c *gin.Context) {
	ctx := c.Request.Context()
	facilityID := c.Param("id")

	if _, err := s.facilityRepo.FindByID(ctx, s.db, facilityID); err != nil {
		AbortWithError(c, err)
		return
	}

	metrics, err := s.snapshotRepo.FacilityHistory(ctx, s.db, facilityID, facilityHistoryLimit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	records := make([]historyRecord, 0, len(metrics))
	for _, m := range metrics {
		records = append(records, historyRecord{
			SnapshotID:  m.SnapshotID,
			Occupancy:   m.Occupancy,
			EnergyKWH:   m.EnergyKWH,
			WaterLiters: m.WaterLiters,
			OpenTickets: m.OpenTickets,
			RecordedAt:  m.RecordedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"facility_id": facilityID,
		"records":     records,
	})
}

func (s *Server) FacilityAggregate(c *gin.Context) {
	ctx := c.Request.Context()
	facilityID := c.Param("id")

	if _, err := s.facilityRepo.FindByID(ctx, s.db, facilityID); err != nil {
		AbortWithError(c, err)
		return
	}

	from, err := parseTimestampQuery(c, "from_time")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	to, err := parseTimestampQuery(c, "to_time")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	averages, err := s.snapshotRepo.AggregateAverages(ctx, s.db, facilityID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"facility_id": facilityID,
		"from_time":   from,
		"to_time":     to,
		"averages":    averages,
	})
}

// FacilityMetricsV2 serves the reshaped v2 payload for the facility's
// reading in the latest snapshot.
func (s *Server) FacilityMetricsV2(c *gin.Context) {
	ctx := c.Request.Context()
	facilityID := c.Param("id")

	execution, err := s.snapshotRepo.LatestExecution(ctx, s.db)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = snapshotdomain.ErrNoData
		}
		AbortWithError(c, err)
		return
	}

	metric, err := s.snapshotRepo.MetricForFacility(ctx, s.db, execution.ID, facilityID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"version": "v2",
		"metadata": gin.H{
			"snapshot_id":    execution.ID,
			"execution_time": execution.ExecutionTime,
		},
		"operational": gin.H{
			"occupancy":    metric.Occupancy,
			"open_tickets": metric.OpenTickets,
		},
		"utilities": gin.H{
			"energy_kwh":        metric.EnergyKWH,
			"water_liters":      metric.WaterLiters,
			"energy_per_person": energyPerPerson(metric.EnergyKWH, metric.Occupancy),
		},
	})
}

func energyPerPerson(energyKWH float64, occupancy int) float64 {
	if occupancy <= 0 {
		return 0
	}
	return math.Round(energyKWH/float64(occupancy)*100) / 100
}

func parseTimestampQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, newValidationError(name, "required", name+" is required")
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, newValidationError(name, "invalid_format", name+" must be an RFC3339 timestamp")
}
