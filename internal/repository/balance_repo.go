package repository

import (
	"context"
	"errors"
	"time"

	"creator-performance-ledger/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// ApplyBalanceDelta runs the apply_balance_delta SQL function, which reads
// and writes the row in a single statement.
func (r *BalanceRepository) ApplyBalanceDelta(ctx context.Context, creatorID uuid.UUID, amount int64, op models.BalanceOp) (*models.BalanceRecord, error) {
	var rec models.BalanceRecord
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM apply_balance_delta(?, ?, ?)", creatorID, amount, string(op)).
		Scan(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.CreatorID == uuid.Nil {
		return nil, errors.New("apply_balance_delta returned no row")
	}
	return &rec, nil
}

func (r *BalanceRepository) FindBalance(ctx context.Context, creatorID uuid.UUID) (*models.BalanceRecord, error) {
	var rec models.BalanceRecord
	if err := r.db.WithContext(ctx).First(&rec, "creator_id = ?", creatorID).Error; err != nil {
		return nil, notFound(err)
	}
	return &rec, nil
}

func (r *BalanceRepository) CreateBalance(ctx context.Context, rec *models.BalanceRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *BalanceRepository) UpdateBalance(ctx context.Context, rec *models.BalanceRecord) error {
	res := r.db.WithContext(ctx).Model(&models.BalanceRecord{}).
		Where("creator_id = ?", rec.CreatorID).
		Updates(map[string]interface{}{
			"lifetime_total": rec.LifetimeTotal,
			"monthly_total":  rec.MonthlyTotal,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BalanceRepository) ListBalances(ctx context.Context) ([]models.BalanceRecord, error) {
	var recs []models.BalanceRecord
	err := r.db.WithContext(ctx).Order("creator_id ASC").Find(&recs).Error
	return recs, err
}

func (r *BalanceRepository) ListBalancesFor(ctx context.Context, creatorIDs []uuid.UUID) ([]models.BalanceRecord, error) {
	var recs []models.BalanceRecord
	if len(creatorIDs) == 0 {
		return recs, nil
	}
	err := r.db.WithContext(ctx).Where("creator_id IN ?", creatorIDs).Find(&recs).Error
	return recs, err
}

// ResetMonthly zeroes the monthly total when the last reset happened before
// monthStart. It reports whether a row changed, so concurrent ticks apply
// the reset once.
func (r *BalanceRepository) ResetMonthly(ctx context.Context, creatorID uuid.UUID, monthStart, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.BalanceRecord{}).
		Where("creator_id = ? AND last_reset_at < ?", creatorID, monthStart).
		Updates(map[string]interface{}{
			"monthly_total": 0,
			"last_reset_at": now,
			"updated_at":    now,
		})
	return res.RowsAffected > 0, res.Error
}
