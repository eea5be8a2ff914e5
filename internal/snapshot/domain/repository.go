package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrNoData         = errors.New("no_data")
	ErrMetricNotFound = errors.New("metric_not_found")
)

// Repository is the transactional store for snapshot executions and their
// metric rows. Write operations take the handle they should run on so the
// generator can compose them inside its own transaction boundaries.
type Repository interface {
	CreateExecution(ctx context.Context, db *gorm.DB, at time.Time) (*SnapshotExecution, error)
	InsertMetric(ctx context.Context, db *gorm.DB, metric *FacilityMetric) error
	FinalizeExecution(ctx context.Context, db *gorm.DB, id snowflake.ID, status ExecutionStatus, durationMS int64) error

	// EnforceRetention keeps the `limit` most recent executions by
	// execution_time (id breaks ties) and purges the rest together with
	// their metric rows inside a single transaction. Returns the number
	// of executions purged.
	EnforceRetention(ctx context.Context, db *gorm.DB, limit int) (int, error)

	CountExecutions(ctx context.Context, db *gorm.DB) (int64, error)
	CountMetrics(ctx context.Context, db *gorm.DB) (int64, error)
	LatestExecution(ctx context.Context, db *gorm.DB) (*SnapshotExecution, error)
	ListExecutions(ctx context.Context, db *gorm.DB, limit int) ([]SnapshotExecution, error)
	MetricsBySnapshot(ctx context.Context, db *gorm.DB, snapshotID snowflake.ID) ([]FacilityMetric, error)
	MetricForFacility(ctx context.Context, db *gorm.DB, snapshotID snowflake.ID, facilityID string) (*FacilityMetric, error)
	FacilityHistory(ctx context.Context, db *gorm.DB, facilityID string, limit int) ([]FacilityMetric, error)
	AggregateAverages(ctx context.Context, db *gorm.DB, facilityID string, from, to time.Time) (*AggregateAverages, error)
}
