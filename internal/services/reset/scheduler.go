// Package reset zeroes monthly balance totals once a calendar month has
// passed since each record's last reset. Lifetime totals are never touched.
package reset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creator-performance-ledger/internal/metrics"
	"creator-performance-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const lockKey = "ledger:monthly-reset"

var ErrLocked = errors.New("monthly reset already running elsewhere")

type Store interface {
	ListBalances(ctx context.Context) ([]models.BalanceRecord, error)
	ResetMonthly(ctx context.Context, creatorID uuid.UUID, monthStart, now time.Time) (bool, error)
}

// Locker serializes ticks across replicas. Lock returns ErrLocked when
// another holder has the key.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, err error)
}

type Result struct {
	Checked int  `json:"checked"`
	Reset   int  `json:"reset"`
	Failed  int  `json:"failed"`
	Skipped bool `json:"skipped"`
}

type Scheduler struct {
	store    Store
	locker   Locker
	loc      *time.Location
	interval time.Duration
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewScheduler(store Store, locker Locker, loc *time.Location, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{store: store, locker: locker, loc: loc, interval: interval, log: log, now: time.Now}
}

// Run ticks once right away and then on every interval until ctx is done.
// A missed tick is harmless: the next one re-checks every record.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if _, err := s.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.WithError(err).Error("monthly reset tick failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) Tick(ctx context.Context) (Result, error) {
	var res Result
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, lockKey, s.lockTTL())
		if errors.Is(err, ErrLocked) {
			s.log.Info("monthly reset skipped, lock held by another instance")
			res.Skipped = true
			return res, nil
		}
		if err != nil {
			return res, fmt.Errorf("obtain reset lock: %w", err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				s.log.WithError(err).Warn("release reset lock")
			}
		}()
	}

	now := s.now().In(s.loc)
	monthStart := MonthStart(now)

	records, err := s.store.ListBalances(ctx)
	if err != nil {
		return res, fmt.Errorf("list balances: %w", err)
	}
	for _, rec := range records {
		res.Checked++
		if SameMonth(rec.LastResetAt.In(s.loc), now) {
			continue
		}
		changed, err := s.store.ResetMonthly(ctx, rec.CreatorID, monthStart, now)
		if err != nil {
			res.Failed++
			s.log.WithError(err).WithField("creator_id", rec.CreatorID).Error("monthly reset failed")
			continue
		}
		if changed {
			res.Reset++
			metrics.MonthlyResets.Inc()
		}
	}
	s.log.WithFields(logrus.Fields{"checked": res.Checked, "reset": res.Reset, "failed": res.Failed}).Info("monthly reset tick")
	return res, nil
}

func (s *Scheduler) lockTTL() time.Duration {
	if s.interval < time.Hour {
		return s.interval
	}
	return time.Hour
}

// MonthStart returns midnight on the first day of t's month, in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
