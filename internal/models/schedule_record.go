package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ScheduleRecord struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorID   uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"creator_id"`
	HoursPerDay decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"hours_per_day"`
	DaysPerWeek int             `gorm:"not null;default:0" json:"days_per_week"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s ScheduleRecord) WeeklyHours() decimal.Decimal {
	return s.HoursPerDay.Mul(decimal.NewFromInt(int64(s.DaysPerWeek)))
}

func (ScheduleRecord) TableName() string { return "schedules" }
