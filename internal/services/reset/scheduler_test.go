package reset

import (
	"context"
	"io"
	"testing"
	"time"

	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/repository/memstore"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return nil, ErrLocked
}

type countingLocker struct{ locks, unlocks int }

func (l *countingLocker) Lock(context.Context, string, time.Duration) (func(context.Context) error, error) {
	l.locks++
	return func(context.Context) error { l.unlocks++; return nil }, nil
}

func newScheduler(store Store, locker Locker, now time.Time) *Scheduler {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := NewScheduler(store, locker, time.UTC, time.Hour, l)
	s.now = func() time.Time { return now }
	return s
}

func TestTickResetsPreviousMonthOnly(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	stale := models.BalanceRecord{CreatorID: uuid.New(), LifetimeTotal: 5000, MonthlyTotal: 800, LastResetAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	fresh := models.BalanceRecord{CreatorID: uuid.New(), LifetimeTotal: 900, MonthlyTotal: 300, LastResetAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	store := memstore.New()
	store.PutBalance(stale)
	store.PutBalance(fresh)
	locker := &countingLocker{}

	res, err := newScheduler(store, locker, now).Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if res.Checked != 2 || res.Reset != 1 {
		t.Fatalf("result got=%+v", res)
	}

	got, _ := store.Balance(stale.CreatorID)
	if got.MonthlyTotal != 0 || got.LifetimeTotal != 5000 || !got.LastResetAt.Equal(now) {
		t.Fatalf("stale record got=%+v", got)
	}
	got, _ = store.Balance(fresh.CreatorID)
	if got.MonthlyTotal != 300 || !got.LastResetAt.Equal(fresh.LastResetAt) {
		t.Fatalf("fresh record touched: %+v", got)
	}
	if locker.locks != 1 || locker.unlocks != 1 {
		t.Fatalf("lock calls got=%d/%d", locker.locks, locker.unlocks)
	}
}

func TestTickIsIdempotent(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	rec := models.BalanceRecord{CreatorID: uuid.New(), LifetimeTotal: 10, MonthlyTotal: 10, LastResetAt: time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)}
	store := memstore.New()
	store.PutBalance(rec)
	s := newScheduler(store, nil, now)

	first, _ := s.Tick(context.Background())
	second, _ := s.Tick(context.Background())
	if first.Reset != 1 || second.Reset != 0 {
		t.Fatalf("resets got=%d,%d want=1,0", first.Reset, second.Reset)
	}
}

func TestTickSkipsWhenLocked(t *testing.T) {
	store := memstore.New()
	rec := models.BalanceRecord{CreatorID: uuid.New(), MonthlyTotal: 10, LifetimeTotal: 10, LastResetAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.PutBalance(rec)

	res, err := newScheduler(store, busyLocker{}, time.Now()).Tick(context.Background())
	if err != nil || !res.Skipped {
		t.Fatalf("Tick got=%+v,%v want skipped", res, err)
	}
	got, _ := store.Balance(rec.CreatorID)
	if got.MonthlyTotal != 10 {
		t.Fatal("record reset while lock was held elsewhere")
	}
}

func TestTickContinuesPastFailures(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	old := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	bad := models.BalanceRecord{CreatorID: uuid.New(), MonthlyTotal: 1, LastResetAt: old}
	good := models.BalanceRecord{CreatorID: uuid.New(), MonthlyTotal: 1, LastResetAt: old}
	store := memstore.New()
	store.PutBalance(bad)
	store.PutBalance(good)
	store.Broken[bad.CreatorID] = true

	res, err := newScheduler(store, nil, now).Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if res.Failed != 1 || res.Reset != 1 {
		t.Fatalf("result got=%+v", res)
	}
}

func TestMonthBoundaryUsesLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 23:30 UTC on Jan 31 is already February in Paris.
	utc := time.Date(2026, 1, 31, 23, 30, 0, 0, time.UTC)
	if SameMonth(utc.In(paris), time.Date(2026, 1, 15, 0, 0, 0, 0, paris)) {
		t.Fatal("expected month change in Paris time")
	}
	if got := MonthStart(utc.In(paris)); got.Month() != time.February || got.Day() != 1 {
		t.Fatalf("MonthStart got=%s", got)
	}
}
