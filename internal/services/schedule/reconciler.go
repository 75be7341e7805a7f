package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const MaxDaysPerWeek = 7

type Store interface {
	FindSchedule(ctx context.Context, creatorID uuid.UUID) (*models.ScheduleRecord, error)
	CreateSchedule(ctx context.Context, rec *models.ScheduleRecord) error
	UpdateSchedule(ctx context.Context, rec *models.ScheduleRecord) error
}

// Update carries the fields found for one creator. Nil means the source
// did not supply that field and the stored value stays as is.
type Update struct {
	HoursPerDay *float64
	DaysPerWeek *int
}

func (u Update) Empty() bool { return u.HoursPerDay == nil && u.DaysPerWeek == nil }

type Reconciler struct {
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewReconciler(store Store, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{store: store, log: log, now: time.Now}
}

// Apply creates or updates the creator's live schedule. An empty update is
// a no-op and returns a nil record.
func (r *Reconciler) Apply(ctx context.Context, creatorID uuid.UUID, u Update) (*models.ScheduleRecord, error) {
	if u.Empty() {
		return nil, nil
	}

	existing, err := r.store.FindSchedule(ctx, creatorID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("read schedule: %w", err)
	}

	if existing == nil {
		now := r.now()
		rec := &models.ScheduleRecord{
			ID:          uuid.New(),
			CreatorID:   creatorID,
			HoursPerDay: decimal.Zero,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		merge(rec, u)
		if err := r.store.CreateSchedule(ctx, rec); err != nil {
			return nil, fmt.Errorf("insert schedule: %w", err)
		}
		r.log.WithFields(logrus.Fields{"creator_id": creatorID, "hours_per_day": rec.HoursPerDay, "days_per_week": rec.DaysPerWeek}).Info("schedule created")
		return rec, nil
	}

	rec := *existing
	merge(&rec, u)
	rec.Active = true
	rec.UpdatedAt = r.now()
	if err := r.store.UpdateSchedule(ctx, &rec); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	r.log.WithFields(logrus.Fields{"creator_id": creatorID, "hours_per_day": rec.HoursPerDay, "days_per_week": rec.DaysPerWeek}).Info("schedule updated")
	return &rec, nil
}

// Deactivate flips the creator's schedule to inactive. Schedules are never deleted.
func (r *Reconciler) Deactivate(ctx context.Context, creatorID uuid.UUID) (*models.ScheduleRecord, error) {
	existing, err := r.store.FindSchedule(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if !existing.Active {
		return existing, nil
	}
	rec := *existing
	rec.Active = false
	rec.UpdatedAt = r.now()
	if err := r.store.UpdateSchedule(ctx, &rec); err != nil {
		return nil, fmt.Errorf("deactivate schedule: %w", err)
	}
	return &rec, nil
}

func merge(rec *models.ScheduleRecord, u Update) {
	if u.HoursPerDay != nil {
		h := *u.HoursPerDay
		if h < 0 {
			h = 0
		}
		rec.HoursPerDay = decimal.NewFromFloat(h).Round(4)
	}
	if u.DaysPerWeek != nil {
		rec.DaysPerWeek = clampDays(*u.DaysPerWeek)
	}
}

func clampDays(d int) int {
	if d < 0 {
		return 0
	}
	if d > MaxDaysPerWeek {
		return MaxDaysPerWeek
	}
	return d
}
