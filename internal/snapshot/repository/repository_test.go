package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	facilitydomain "github.com/opsgrid/facilitypulse/internal/facility/domain"
	"github.com/opsgrid/facilitypulse/internal/snapshot/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&facilitydomain.Facility{},
		&facilitydomain.HVACStatus{},
		&domain.SnapshotExecution{},
		&domain.FacilityMetric{},
	))
	require.NoError(t, db.Create(&facilitydomain.Facility{
		ID: "FAC-001", Name: "Harbor Point Tower", City: "Rotterdam", Capacity: 1200, IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&facilitydomain.HVACStatus{
		ID: 1, Code: "healthy", Description: "Normal",
	}).Error)
	return db
}

func newTestRepo(t *testing.T) (domain.Repository, *gorm.DB) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(node), newTestDB(t)
}

func seedExecutions(t *testing.T, repo domain.Repository, db *gorm.DB, n int, base time.Time) []*domain.SnapshotExecution {
	t.Helper()
	ctx := context.Background()
	executions := make([]*domain.SnapshotExecution, 0, n)
	for i := 0; i < n; i++ {
		execution, err := repo.CreateExecution(ctx, db, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		require.NoError(t, repo.InsertMetric(ctx, db, &domain.FacilityMetric{
			SnapshotID:   execution.ID,
			FacilityID:   "FAC-001",
			HVACStatusID: 1,
			Occupancy:    10,
			EnergyKWH:    15000,
			WaterLiters:  30000,
			OpenTickets:  2,
			RecordedAt:   execution.ExecutionTime,
		}))
		executions = append(executions, execution)
	}
	return executions
}

func TestEnforceRetentionKeepsMostRecent(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	executions := seedExecutions(t, repo, db, 60, base)

	purged, err := repo.EnforceRetention(ctx, db, 50)
	require.NoError(t, err)
	assert.Equal(t, 10, purged)

	count, err := repo.CountExecutions(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)

	// The survivors are exactly the 50 newest by execution_time.
	var remaining []domain.SnapshotExecution
	require.NoError(t, db.Order("execution_time ASC").Find(&remaining).Error)
	require.Len(t, remaining, 50)
	assert.Equal(t, executions[10].ID, remaining[0].ID)
	assert.Equal(t, executions[59].ID, remaining[49].ID)

	// No metric row may outlive its execution.
	var orphans int64
	require.NoError(t, db.Model(&domain.FacilityMetric{}).
		Where("snapshot_id NOT IN (?)",
			db.Model(&domain.SnapshotExecution{}).Select("id")).
		Count(&orphans).Error)
	assert.Equal(t, int64(0), orphans)
}

func TestEnforceRetentionUnderLimitIsNoop(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	seedExecutions(t, repo, db, 5, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	purged, err := repo.EnforceRetention(ctx, db, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, purged)

	count, err := repo.CountExecutions(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestEnforceRetentionBreaksTiesByID(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Same execution_time for every row: the higher (newer) ID must win.
	var ids []snowflake.ID
	for i := 0; i < 4; i++ {
		execution, err := repo.CreateExecution(ctx, db, at)
		require.NoError(t, err)
		ids = append(ids, execution.ID)
	}

	purged, err := repo.EnforceRetention(ctx, db, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)

	var remaining []domain.SnapshotExecution
	require.NoError(t, db.Order("id ASC").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, ids[2], remaining[0].ID)
	assert.Equal(t, ids[3], remaining[1].ID)
}

func TestLatestExecutionEmptyStore(t *testing.T) {
	repo, db := newTestRepo(t)

	_, err := repo.LatestExecution(context.Background(), db)
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestLatestExecutionPicksNewest(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	executions := seedExecutions(t, repo, db, 3, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	latest, err := repo.LatestExecution(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, executions[2].ID, latest.ID)
}

func TestFinalizeExecutionSetsStatusAndDuration(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	execution, err := repo.CreateExecution(ctx, db, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, domain.ExecutionStatusRunning, execution.Status)

	require.NoError(t, repo.FinalizeExecution(ctx, db, execution.ID, domain.ExecutionStatusSuccess, 42))

	var stored domain.SnapshotExecution
	require.NoError(t, db.First(&stored, "id = ?", execution.ID).Error)
	assert.Equal(t, domain.ExecutionStatusSuccess, stored.Status)
	assert.Equal(t, int64(42), stored.DurationMS)
}

func TestMetricForFacilityNotFound(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	execution, err := repo.CreateExecution(ctx, db, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = repo.MetricForFacility(ctx, db, execution.ID, "FAC-404")
	assert.ErrorIs(t, err, domain.ErrMetricNotFound)
}

func TestFacilityHistoryOrderAndLimit(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	execution, err := repo.CreateExecution(ctx, db, base)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		require.NoError(t, repo.InsertMetric(ctx, db, &domain.FacilityMetric{
			SnapshotID:   execution.ID,
			FacilityID:   "FAC-001",
			HVACStatusID: 1,
			Occupancy:    i,
			EnergyKWH:    100,
			WaterLiters:  100,
			OpenTickets:  0,
			RecordedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := repo.FacilityHistory(ctx, db, "FAC-001", 4)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, 5, history[0].Occupancy)
	assert.Equal(t, 2, history[3].Occupancy)
}

func TestAggregateAveragesRoundsToTwoDecimals(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	execution, err := repo.CreateExecution(ctx, db, base)
	require.NoError(t, err)
	for i, energy := range []float64{10000.111, 10000.222, 10000.333} {
		require.NoError(t, repo.InsertMetric(ctx, db, &domain.FacilityMetric{
			SnapshotID:   execution.ID,
			FacilityID:   "FAC-001",
			HVACStatusID: 1,
			Occupancy:    i + 1,
			EnergyKWH:    energy,
			WaterLiters:  100,
			OpenTickets:  i,
			RecordedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	averages, err := repo.AggregateAverages(ctx, db, "FAC-001", base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, averages.AvgOccupancy, 0.001)
	assert.InDelta(t, 10000.22, averages.AvgEnergyKWH, 0.001)
	assert.InDelta(t, 100.0, averages.AvgWaterLiters, 0.001)
	assert.InDelta(t, 1.0, averages.AvgOpenTickets, 0.001)
}

func TestAggregateAveragesEmptyWindowDefaultsToZero(t *testing.T) {
	repo, db := newTestRepo(t)

	averages, err := repo.AggregateAverages(context.Background(), db, "FAC-001",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, averages.AvgOccupancy)
	assert.Zero(t, averages.AvgEnergyKWH)
	assert.Zero(t, averages.AvgWaterLiters)
	assert.Zero(t, averages.AvgOpenTickets)
}
