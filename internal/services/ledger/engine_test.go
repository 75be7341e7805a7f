package ledger_test

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/repository/memstore"
	"creator-performance-ledger/internal/services/ledger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func apply(t *testing.T, e *ledger.Engine, id uuid.UUID, op models.BalanceOp, amount int64) ledger.Outcome {
	t.Helper()
	out, err := e.Apply(context.Background(), ledger.Mutation{CreatorID: id, Op: op, Amount: amount})
	if err != nil {
		t.Fatalf("Apply(%s %d): %v", op, amount, err)
	}
	return out
}

func TestSetIsIdempotent(t *testing.T) {
	for _, atomicDisabled := range []bool{false, true} {
		store := memstore.New()
		store.AtomicDisabled = atomicDisabled
		e := ledger.NewEngine(store, quietLogger())
		id := uuid.New()

		first := apply(t, e, id, models.OpSet, 500)
		second := apply(t, e, id, models.OpSet, 500)
		if first.Record.LifetimeTotal != 500 || second.Record.LifetimeTotal != 500 {
			t.Fatalf("atomicDisabled=%v lifetime got=%d,%d want=500", atomicDisabled, first.Record.LifetimeTotal, second.Record.LifetimeTotal)
		}
		if second.Record.MonthlyTotal != first.Record.MonthlyTotal {
			t.Fatalf("atomicDisabled=%v monthly drifted %d -> %d", atomicDisabled, first.Record.MonthlyTotal, second.Record.MonthlyTotal)
		}
	}
}

func TestSubtractNeverGoesNegative(t *testing.T) {
	for _, atomicDisabled := range []bool{false, true} {
		store := memstore.New()
		store.AtomicDisabled = atomicDisabled
		e := ledger.NewEngine(store, quietLogger())
		id := uuid.New()

		apply(t, e, id, models.OpAdd, 100)
		for _, amt := range []int64{30, 90, 1000, 1} {
			out := apply(t, e, id, models.OpSubtract, amt)
			if out.Record.LifetimeTotal < 0 || out.Record.MonthlyTotal < 0 {
				t.Fatalf("atomicDisabled=%v negative balance %+v", atomicDisabled, out.Record)
			}
		}
		rec, _ := store.Balance(id)
		if rec.LifetimeTotal != 0 || rec.MonthlyTotal != 0 {
			t.Fatalf("atomicDisabled=%v final got=%+v want zeros", atomicDisabled, rec)
		}
	}
}

func TestSubtractOnMissingRecordCreatesZero(t *testing.T) {
	store := memstore.New()
	store.AtomicDisabled = true
	e := ledger.NewEngine(store, quietLogger())
	id := uuid.New()

	out := apply(t, e, id, models.OpSubtract, 40)
	if out.Path != ledger.PathFallback {
		t.Fatalf("path got=%s want=%s", out.Path, ledger.PathFallback)
	}
	if out.Record.LifetimeTotal != 0 {
		t.Fatalf("lifetime got=%d want=0", out.Record.LifetimeTotal)
	}
}

func TestAtomicPathPreferred(t *testing.T) {
	store := memstore.New()
	e := ledger.NewEngine(store, quietLogger())

	out := apply(t, e, uuid.New(), models.OpAdd, 10)
	if out.Path != ledger.PathAtomic {
		t.Fatalf("path got=%s want=%s", out.Path, ledger.PathAtomic)
	}
	if store.FallbackCalls != 0 {
		t.Fatalf("fallback used %d times", store.FallbackCalls)
	}
}

func TestFallbackUpdatesExistingRecord(t *testing.T) {
	store := memstore.New()
	id := uuid.New()
	store.PutBalance(models.BalanceRecord{CreatorID: id, LifetimeTotal: 1000, MonthlyTotal: 200})
	store.AtomicDisabled = true
	e := ledger.NewEngine(store, quietLogger())

	out := apply(t, e, id, models.OpAdd, 50)
	if out.Path != ledger.PathFallback {
		t.Fatalf("path got=%s", out.Path)
	}
	rec, _ := store.Balance(id)
	if rec.LifetimeTotal != 1050 || rec.MonthlyTotal != 250 {
		t.Fatalf("record got=%+v want 1050/250", rec)
	}
}

func TestBothPathsFailing(t *testing.T) {
	store := memstore.New()
	id := uuid.New()
	store.Broken[id] = true
	e := ledger.NewEngine(store, quietLogger())

	_, err := e.Apply(context.Background(), ledger.Mutation{CreatorID: id, Op: models.OpAdd, Amount: 1})
	if !errors.Is(err, memstore.ErrInjected) {
		t.Fatalf("err got=%v want injected failure", err)
	}
}

func TestRejectsInvalidInput(t *testing.T) {
	e := ledger.NewEngine(memstore.New(), quietLogger())
	if _, err := e.Apply(context.Background(), ledger.Mutation{Op: "double", Amount: 1}); !errors.Is(err, ledger.ErrInvalidOp) {
		t.Fatalf("err got=%v want ErrInvalidOp", err)
	}
	if _, err := e.Apply(context.Background(), ledger.Mutation{Op: models.OpAdd, Amount: -1}); !errors.Is(err, ledger.ErrNegativeAmount) {
		t.Fatalf("err got=%v want ErrNegativeAmount", err)
	}
}

func TestAddNearMaxNeverWraps(t *testing.T) {
	for _, atomicDisabled := range []bool{false, true} {
		store := memstore.New()
		store.AtomicDisabled = atomicDisabled
		e := ledger.NewEngine(store, quietLogger())
		id := uuid.New()
		store.PutBalance(models.BalanceRecord{CreatorID: id, LifetimeTotal: 9223372036854775000, MonthlyTotal: 20})

		out := apply(t, e, id, models.OpAdd, 10000)
		if out.Record.LifetimeTotal != math.MaxInt64 || out.Record.MonthlyTotal != 10020 {
			t.Fatalf("atomicDisabled=%v totals got=%d/%d want=%d/10020", atomicDisabled, out.Record.LifetimeTotal, out.Record.MonthlyTotal, int64(math.MaxInt64))
		}
	}
}

func TestCompute(t *testing.T) {
	cur := &models.BalanceRecord{LifetimeTotal: 1000, MonthlyTotal: 300}
	cases := []struct {
		name   string
		cur    *models.BalanceRecord
		op     models.BalanceOp
		amount int64
		want   ledger.Totals
	}{
		{"set up", cur, models.OpSet, 1200, ledger.Totals{LifetimeTotal: 1200, MonthlyTotal: 500}},
		{"set down floors monthly", cur, models.OpSet, 500, ledger.Totals{LifetimeTotal: 500, MonthlyTotal: 0}},
		{"add", cur, models.OpAdd, 10, ledger.Totals{LifetimeTotal: 1010, MonthlyTotal: 310}},
		{"subtract", cur, models.OpSubtract, 400, ledger.Totals{LifetimeTotal: 600, MonthlyTotal: 0}},
		{"set on nil", nil, models.OpSet, 70, ledger.Totals{LifetimeTotal: 70, MonthlyTotal: 70}},
		{"add saturates", &models.BalanceRecord{LifetimeTotal: math.MaxInt64 - 807, MonthlyTotal: 5}, models.OpAdd, 10000,
			ledger.Totals{LifetimeTotal: math.MaxInt64, MonthlyTotal: 10005}},
		{"set saturates monthly", &models.BalanceRecord{LifetimeTotal: 0, MonthlyTotal: math.MaxInt64 - 1}, models.OpSet, 50,
			ledger.Totals{LifetimeTotal: 50, MonthlyTotal: math.MaxInt64}},
	}
	for _, tc := range cases {
		if got := ledger.Compute(tc.cur, tc.op, tc.amount); got != tc.want {
			t.Fatalf("%s: got=%+v want=%+v", tc.name, got, tc.want)
		}
	}
}
