package seed

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	facilitydomain "github.com/opsgrid/facilitypulse/internal/facility/domain"
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
	))
	return db
}

func TestEnsureReferenceDataSeedsEmptyTables(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, EnsureReferenceData(db))

	var statuses []facilitydomain.HVACStatus
	require.NoError(t, db.Order("id").Find(&statuses).Error)
	require.Len(t, statuses, 3)
	assert.Equal(t, "healthy", statuses[0].Code)
	assert.Equal(t, "warning", statuses[1].Code)
	assert.Equal(t, "critical", statuses[2].Code)

	var facilities int64
	require.NoError(t, db.Model(&facilitydomain.Facility{}).Count(&facilities).Error)
	assert.Equal(t, int64(len(defaultFacilities)), facilities)
}

func TestEnsureReferenceDataIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, EnsureReferenceData(db))
	require.NoError(t, EnsureReferenceData(db))

	var statusCount int64
	require.NoError(t, db.Model(&facilitydomain.HVACStatus{}).Count(&statusCount).Error)
	assert.Equal(t, int64(3), statusCount)
}

func TestEnsureReferenceDataPreservesOperatorEdits(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, EnsureReferenceData(db))

	// Deactivate a facility, then reseed: the edit must survive.
	require.NoError(t, db.Model(&facilitydomain.Facility{}).
		Where("id = ?", "FAC-001").
		Update("is_active", false).Error)
	require.NoError(t, EnsureReferenceData(db))

	var facility facilitydomain.Facility
	require.NoError(t, db.First(&facility, "id = ?", "FAC-001").Error)
	assert.False(t, facility.IsActive)
}
