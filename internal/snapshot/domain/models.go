package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	facilitydomain "github.com/opsgrid/facilitypulse/internal/facility/domain"
)

type ExecutionStatus string

const (
	ExecutionStatusRunning ExecutionStatus = "running"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
)

// SnapshotExecution records one run of the metric-generation job. Created
// in running state, it transitions exactly once to success or failed and is
// only ever removed by retention.
type SnapshotExecution struct {
	ID            snowflake.ID    `json:"snapshot_id" gorm:"primaryKey"`
	ExecutionTime time.Time       `json:"execution_time" gorm:"not null;index"`
	Status        ExecutionStatus `json:"status" gorm:"type:text;not null;default:running"`
	DurationMS    int64           `json:"duration_ms" gorm:"column:duration_ms"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SnapshotExecution) TableName() string { return "snapshot_executions" }

// FacilityMetric is one facility's readings inside a snapshot. Rows are
// immutable once written and are deleted only with their owning execution.
type FacilityMetric struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	SnapshotID   snowflake.ID `json:"snapshot_id" gorm:"not null;index;index:idx_facility_snapshot,priority:2"`
	FacilityID   string       `json:"facility_id" gorm:"type:varchar(20);not null;index:idx_facility_snapshot,priority:1;index:idx_facility_recorded,priority:1"`
	HVACStatusID int64        `json:"hvac_status_id" gorm:"not null"`
	Occupancy    int          `json:"occupancy" gorm:"not null"`
	EnergyKWH    float64      `json:"energy_kwh" gorm:"column:energy_kwh;not null"`
	WaterLiters  float64      `json:"water_liters" gorm:"not null"`
	OpenTickets  int          `json:"open_tickets" gorm:"not null"`
	RecordedAt   time.Time    `json:"recorded_at" gorm:"not null;index:idx_facility_recorded,priority:2"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// Associations exist so schema builds enforce the same referential
	// integrity the SQL migrations declare. They are never serialized.
	Snapshot   *SnapshotExecution         `json:"-" gorm:"foreignKey:SnapshotID;references:ID"`
	Facility   *facilitydomain.Facility   `json:"-" gorm:"foreignKey:FacilityID;references:ID"`
	HVACStatus *facilitydomain.HVACStatus `json:"-" gorm:"foreignKey:HVACStatusID;references:ID"`
}

func (FacilityMetric) TableName() string { return "facility_metrics" }

// AggregateAverages holds time-windowed per-facility averages, rounded to
// two decimal places with missing windows defaulting to zero.
type AggregateAverages struct {
	AvgOccupancy   float64 `json:"avg_occupancy"`
	AvgEnergyKWH   float64 `json:"avg_energy_kwh"`
	AvgWaterLiters float64 `json:"avg_water_liters"`
	AvgOpenTickets float64 `json:"avg_open_tickets"`
}
