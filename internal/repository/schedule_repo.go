package repository

import (
	"context"
	"time"

	"creator-performance-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) FindSchedule(ctx context.Context, creatorID uuid.UUID) (*models.ScheduleRecord, error) {
	var rec models.ScheduleRecord
	if err := r.db.WithContext(ctx).First(&rec, "creator_id = ?", creatorID).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *ScheduleRepository) CreateSchedule(ctx context.Context, rec *models.ScheduleRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, rec *models.ScheduleRecord) error {
	res := r.db.WithContext(ctx).Model(&models.ScheduleRecord{}).
		Where("creator_id = ?", rec.CreatorID).
		Updates(map[string]interface{}{
			"hours_per_day": rec.HoursPerDay,
			"days_per_week": rec.DaysPerWeek,
			"active":        rec.Active,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ScheduleRepository) ListSchedulesFor(ctx context.Context, creatorIDs []uuid.UUID) ([]models.ScheduleRecord, error) {
	var recs []models.ScheduleRecord
	if len(creatorIDs) == 0 {
		return recs, nil
	}
	err := r.db.WithContext(ctx).Where("creator_id IN ?", creatorIDs).Find(&recs).Error
	return recs, err
}
