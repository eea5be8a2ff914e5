package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opsgrid/facilitypulse/internal/snapshot/domain"
	"gorm.io/gorm"
)

type repository struct {
	genID *snowflake.Node
}

func New(genID *snowflake.Node) domain.Repository {
	return &repository{genID: genID}
}

func (r *repository) CreateExecution(ctx context.Context, db *gorm.DB, at time.Time) (*domain.SnapshotExecution, error) {
	execution := &domain.SnapshotExecution{
		ID:            r.genID.Generate(),
		ExecutionTime: at,
		Status:        domain.ExecutionStatusRunning,
	}
	if err := db.WithContext(ctx).Create(execution).Error; err != nil {
		return nil, err
	}
	return execution, nil
}

func (r *repository) InsertMetric(ctx context.Context, db *gorm.DB, metric *domain.FacilityMetric) error {
	if metric.ID == 0 {
		metric.ID = r.genID.Generate()
	}
	return db.WithContext(ctx).Create(metric).Error
}

func (r *repository) FinalizeExecution(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.ExecutionStatus, durationMS int64) error {
	return db.WithContext(ctx).
		Model(&domain.SnapshotExecution{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"duration_ms": durationMS,
		}).Error
}

func (r *repository) EnforceRetention(ctx context.Context, db *gorm.DB, limit int) (int, error) {
	purged := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row set is read fresh inside the transaction so executions
		// created after the caller decided to purge are never deleted.
		var ids []snowflake.ID
		if err := tx.Model(&domain.SnapshotExecution{}).
			Order("execution_time DESC, id DESC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if limit < 0 {
			limit = 0
		}
		if len(ids) <= limit {
			return nil
		}

		stale := ids[limit:]
		if err := tx.Where("snapshot_id IN ?", stale).
			Delete(&domain.FacilityMetric{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", stale).
			Delete(&domain.SnapshotExecution{}).Error; err != nil {
			return err
		}
		purged = len(stale)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

func (r *repository) CountExecutions(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.SnapshotExecution{}).Count(&count).Error
	return count, err
}

func (r *repository) CountMetrics(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.FacilityMetric{}).Count(&count).Error
	return count, err
}

func (r *repository) LatestExecution(ctx context.Context, db *gorm.DB) (*domain.SnapshotExecution, error) {
	var execution domain.SnapshotExecution
	err := db.WithContext(ctx).
		Order("execution_time DESC, id DESC").
		First(&execution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNoData
	}
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

func (r *repository) ListExecutions(ctx context.Context, db *gorm.DB, limit int) ([]domain.SnapshotExecution, error) {
	var executions []domain.SnapshotExecution
	err := db.WithContext(ctx).
		Order("execution_time DESC, id DESC").
		Limit(limit).
		Find(&executions).Error
	if err != nil {
		return nil, err
	}
	return executions, nil
}

func (r *repository) MetricsBySnapshot(ctx context.Context, db *gorm.DB, snapshotID snowflake.ID) ([]domain.FacilityMetric, error) {
	var metrics []domain.FacilityMetric
	err := db.WithContext(ctx).
		Where("snapshot_id = ?", snapshotID).
		Order("facility_id").
		Find(&metrics).Error
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

func (r *repository) MetricForFacility(ctx context.Context, db *gorm.DB, snapshotID snowflake.ID, facilityID string) (*domain.FacilityMetric, error) {
	var metric domain.FacilityMetric
	err := db.WithContext(ctx).
		Where("snapshot_id = ? AND facility_id = ?", snapshotID, facilityID).
		First(&metric).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrMetricNotFound
	}
	if err != nil {
		return nil, err
	}
	return &metric, nil
}

func (r *repository) FacilityHistory(ctx context.Context, db *gorm.DB, facilityID string, limit int) ([]domain.FacilityMetric, error) {
	var metrics []domain.FacilityMetric
	err := db.WithContext(ctx).
		Where("facility_id = ?", facilityID).
		Order("recorded_at DESC, id DESC").
		Limit(limit).
		Find(&metrics).Error
	if err != nil {
		return nil, err
	}
	return metrics, nil
}

func (r *repository) AggregateAverages(ctx context.Context, db *gorm.DB, facilityID string, from, to time.Time) (*domain.AggregateAverages, error) {
	var row struct {
		AvgOccupancy   sql.NullFloat64 `gorm:"column:avg_occupancy"`
		AvgEnergyKWH   sql.NullFloat64 `gorm:"column:avg_energy_kwh"`
		AvgWaterLiters sql.NullFloat64 `gorm:"column:avg_water_liters"`
		AvgOpenTickets sql.NullFloat64 `gorm:"column:avg_open_tickets"`
	}

	err := db.WithContext(ctx).
		Model(&domain.FacilityMetric{}).
		Select(
			"AVG(occupancy) AS avg_occupancy",
			"AVG(energy_kwh) AS avg_energy_kwh",
			"AVG(water_liters) AS avg_water_liters",
			"AVG(open_tickets) AS avg_open_tickets",
		).
		Where("facility_id = ? AND recorded_at >= ? AND recorded_at <= ?", facilityID, from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &domain.AggregateAverages{
		AvgOccupancy:   round2(row.AvgOccupancy.Float64),
		AvgEnergyKWH:   round2(row.AvgEnergyKWH.Float64),
		AvgWaterLiters: round2(row.AvgWaterLiters.Float64),
		AvgOpenTickets: round2(row.AvgOpenTickets.Float64),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
