package domain

import "time"

// Facility is immutable reference data seeded at bootstrap. Capacity
// drives the occupancy bounds of generated metrics.
type Facility struct {
	ID        string    `json:"id" gorm:"type:varchar(20);primaryKey"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	City      string    `json:"city" gorm:"type:text;not null"`
	Capacity  int       `json:"capacity" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Facility) TableName() string { return "facilities" }

// HVACStatus is the fixed categorical health indicator set metrics draw from.
type HVACStatus struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Code        string `json:"code" gorm:"type:text;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
}

func (HVACStatus) TableName() string { return "hvac_statuses" }
