package seed

import (
	"context"
	"errors"
	"time"

	facilitydomain "github.com/opsgrid/facilitypulse/internal/facility/domain"
	"github.com/opsgrid/facilitypulse/pkg/db"
	"gorm.io/gorm"
)

var defaultHVACStatuses = []facilitydomain.HVACStatus{
	{Code: "healthy", Description: "Normal"},
	{Code: "warning", Description: "Attention required"},
	{Code: "critical", Description: "Immediate action"},
}

var defaultFacilities = []facilitydomain.Facility{
	{ID: "FAC-001", Name: "Harbor Point Tower", City: "Rotterdam", Capacity: 1200, IsActive: true},
	{ID: "FAC-002", Name: "Northgate Logistics Hub", City: "Hamburg", Capacity: 800, IsActive: true},
	{ID: "FAC-003", Name: "Civic Center Annex", City: "Vienna", Capacity: 450, IsActive: true},
	{ID: "FAC-004", Name: "Riverside Data Hall", City: "Lyon", Capacity: 150, IsActive: true},
	{ID: "FAC-005", Name: "Old Mill Depot", City: "Turin", Capacity: 300, IsActive: false},
}

// EnsureReferenceData seeds the HVAC status reference set and the default
// facility fleet on first boot. Each table is seeded only when empty, so
// restarts and operator edits are never clobbered.
func EnsureReferenceData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureHVACStatuses(ctx, tx); err != nil {
			return err
		}
		return ensureFacilities(ctx, tx)
	})
}

func ensureHVACStatuses(ctx context.Context, tx *gorm.DB) error {
	var existing facilitydomain.HVACStatus
	err := tx.WithContext(ctx).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	statuses := make([]facilitydomain.HVACStatus, len(defaultHVACStatuses))
	copy(statuses, defaultHVACStatuses)
	if err := tx.WithContext(ctx).Create(&statuses).Error; err != nil {
		// A concurrent replica won the seed race.
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		return err
	}
	return nil
}

func ensureFacilities(ctx context.Context, tx *gorm.DB) error {
	var existing facilitydomain.Facility
	err := tx.WithContext(ctx).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	facilities := make([]facilitydomain.Facility, len(defaultFacilities))
	copy(facilities, defaultFacilities)
	for i := range facilities {
		facilities[i].CreatedAt = now
		facilities[i].UpdatedAt = now
	}
	if err := tx.WithContext(ctx).Create(&facilities).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		return err
	}
	return nil
}
