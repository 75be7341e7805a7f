package repository

import (
	"context"

	"creator-performance-ledger/internal/models"

	"gorm.io/gorm"
)

type StatsEventRepository struct {
	db *gorm.DB
}

func NewStatsEventRepository(db *gorm.DB) *StatsEventRepository {
	return &StatsEventRepository{db: db}
}

func (r *StatsEventRepository) CreateEvent(ctx context.Context, ev *models.StatsRecomputeEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}
