package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not_found")

type Repository interface {
	ListActive(ctx context.Context, db *gorm.DB) ([]Facility, error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Facility, error)
	ListHVACStatuses(ctx context.Context, db *gorm.DB) ([]HVACStatus, error)
}
