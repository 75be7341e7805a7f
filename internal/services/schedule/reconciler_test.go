package schedule_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/repository"
	"creator-performance-ledger/internal/repository/memstore"
	"creator-performance-ledger/internal/services/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func newReconciler(store *memstore.Store) *schedule.Reconciler {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return schedule.NewReconciler(store, l)
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int { return &v }

func TestEmptyUpdateIsNoop(t *testing.T) {
	store := memstore.New()
	r := newReconciler(store)
	id := uuid.New()

	rec, err := r.Apply(context.Background(), id, schedule.Update{})
	if err != nil || rec != nil {
		t.Fatalf("Apply got=%v,%v want nil,nil", rec, err)
	}
	if _, ok := store.Schedule(id); ok {
		t.Fatal("schedule created for empty update")
	}
}

func TestCreateDefaultsMissingFieldsToZero(t *testing.T) {
	store := memstore.New()
	r := newReconciler(store)
	id := uuid.New()

	if _, err := r.Apply(context.Background(), id, schedule.Update{HoursPerDay: ptrF(2.5)}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	rec, ok := store.Schedule(id)
	if !ok {
		t.Fatal("schedule not created")
	}
	if !rec.HoursPerDay.Equal(decimal.RequireFromString("2.5")) || rec.DaysPerWeek != 0 || !rec.Active {
		t.Fatalf("record got=%+v", rec)
	}
}

func TestUpdateTouchesOnlySuppliedFieldsAndReactivates(t *testing.T) {
	store := memstore.New()
	id := uuid.New()
	if err := store.CreateSchedule(context.Background(), &models.ScheduleRecord{
		CreatorID: id, HoursPerDay: decimal.NewFromInt(3), DaysPerWeek: 4, Active: false,
	}); err != nil {
		t.Fatal(err)
	}
	r := newReconciler(store)

	if _, err := r.Apply(context.Background(), id, schedule.Update{DaysPerWeek: ptrI(6)}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	rec, _ := store.Schedule(id)
	if !rec.HoursPerDay.Equal(decimal.NewFromInt(3)) || rec.DaysPerWeek != 6 || !rec.Active {
		t.Fatalf("record got=%+v", rec)
	}
	if got := rec.WeeklyHours(); !got.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("WeeklyHours got=%s want=18", got)
	}
}

func TestClampsValues(t *testing.T) {
	store := memstore.New()
	r := newReconciler(store)
	id := uuid.New()

	rec, err := r.Apply(context.Background(), id, schedule.Update{HoursPerDay: ptrF(-1), DaysPerWeek: ptrI(12)})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !rec.HoursPerDay.IsZero() || rec.DaysPerWeek != schedule.MaxDaysPerWeek {
		t.Fatalf("record got=%+v", rec)
	}
}

func TestStorageFailureIsReturned(t *testing.T) {
	store := memstore.New()
	id := uuid.New()
	store.Broken[id] = true
	r := newReconciler(store)

	if _, err := r.Apply(context.Background(), id, schedule.Update{DaysPerWeek: ptrI(1)}); !errors.Is(err, memstore.ErrInjected) {
		t.Fatalf("err got=%v", err)
	}
}

func TestDeactivate(t *testing.T) {
	store := memstore.New()
	r := newReconciler(store)
	id := uuid.New()

	if _, err := r.Deactivate(context.Background(), id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err got=%v want ErrNotFound", err)
	}
	if _, err := r.Apply(context.Background(), id, schedule.Update{DaysPerWeek: ptrI(5)}); err != nil {
		t.Fatal(err)
	}
	rec, err := r.Deactivate(context.Background(), id)
	if err != nil || rec.Active {
		t.Fatalf("Deactivate got=%+v,%v", rec, err)
	}
	stored, _ := store.Schedule(id)
	if stored.Active || stored.DaysPerWeek != 5 {
		t.Fatalf("stored got=%+v", stored)
	}
}
