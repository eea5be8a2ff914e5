package facility

import (
	"context"
	"errors"

	"github.com/opsgrid/facilitypulse/internal/facility/domain"
	"gorm.io/gorm"
)

type repository struct{}

func NewRepository() domain.Repository {
	return &repository{}
}

func (r *repository) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Facility, error) {
	var facilities []domain.Facility
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&facilities).Error
	if err != nil {
		return nil, err
	}
	return facilities, nil
}

func (r *repository) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Facility, error) {
	var facility domain.Facility
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&facility).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &facility, nil
}

func (r *repository) ListHVACStatuses(ctx context.Context, db *gorm.DB) ([]domain.HVACStatus, error) {
	var statuses []domain.HVACStatus
	err := db.WithContext(ctx).
		Order("id").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}
