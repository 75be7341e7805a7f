// Package ledger applies set/add/subtract mutations to a creator's balance
// record. The atomic SQL path is tried first; when it fails the engine
// falls back to read-then-write, which is not safe against concurrent
// writers on the same creator.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"creator-performance-ledger/internal/metrics"
	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	PathAtomic   = "atomic"
	PathFallback = "fallback"
)

var (
	ErrInvalidOp      = errors.New("invalid balance operation")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

type Store interface {
	ApplyBalanceDelta(ctx context.Context, creatorID uuid.UUID, amount int64, op models.BalanceOp) (*models.BalanceRecord, error)
	FindBalance(ctx context.Context, creatorID uuid.UUID) (*models.BalanceRecord, error)
	CreateBalance(ctx context.Context, rec *models.BalanceRecord) error
	UpdateBalance(ctx context.Context, rec *models.BalanceRecord) error
}

type Mutation struct {
	CreatorID uuid.UUID
	Op        models.BalanceOp
	Amount    int64
	Actor     models.Actor
}

type Outcome struct {
	Record *models.BalanceRecord
	Path   string
}

type Engine struct {
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewEngine(store Store, log logrus.FieldLogger) *Engine {
	return &Engine{store: store, log: log, now: time.Now}
}

func (e *Engine) Apply(ctx context.Context, m Mutation) (Outcome, error) {
	if !m.Op.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrInvalidOp, m.Op)
	}
	if m.Amount < 0 {
		return Outcome{}, ErrNegativeAmount
	}
	fields := logrus.Fields{
		"creator_id": m.CreatorID,
		"op":         m.Op,
		"amount":     m.Amount,
		"actor":      m.Actor.String(),
	}

	rec, err := e.store.ApplyBalanceDelta(ctx, m.CreatorID, m.Amount, m.Op)
	if err == nil {
		metrics.LedgerWrites.WithLabelValues(PathAtomic, "ok").Inc()
		e.log.WithFields(fields).WithField("path", PathAtomic).Info("balance updated")
		return Outcome{Record: rec, Path: PathAtomic}, nil
	}
	metrics.LedgerWrites.WithLabelValues(PathAtomic, "error").Inc()
	e.log.WithFields(fields).WithField("pg_code", repository.PgCode(err)).
		WithError(err).Warn("atomic balance update failed, falling back to read-then-write")

	rec, ferr := e.fallback(ctx, m)
	if ferr != nil {
		metrics.LedgerWrites.WithLabelValues(PathFallback, "error").Inc()
		e.log.WithFields(fields).WithError(ferr).Error("balance update failed")
		return Outcome{}, fmt.Errorf("balance update for %s: atomic: %v; fallback: %w", m.CreatorID, err, ferr)
	}
	metrics.LedgerWrites.WithLabelValues(PathFallback, "ok").Inc()
	e.log.WithFields(fields).WithField("path", PathFallback).Info("balance updated")
	return Outcome{Record: rec, Path: PathFallback}, nil
}

func (e *Engine) fallback(ctx context.Context, m Mutation) (*models.BalanceRecord, error) {
	current, err := e.store.FindBalance(ctx, m.CreatorID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		now := e.now()
		next := Compute(nil, m.Op, m.Amount)
		rec := &models.BalanceRecord{
			CreatorID:     m.CreatorID,
			LifetimeTotal: next.LifetimeTotal,
			MonthlyTotal:  next.MonthlyTotal,
			LastResetAt:   now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := e.store.CreateBalance(ctx, rec); err != nil {
			return nil, fmt.Errorf("insert balance: %w", err)
		}
		return rec, nil
	case err != nil:
		return nil, fmt.Errorf("read balance: %w", err)
	}

	next := Compute(current, m.Op, m.Amount)
	rec := *current
	rec.LifetimeTotal = next.LifetimeTotal
	rec.MonthlyTotal = next.MonthlyTotal
	rec.UpdatedAt = e.now()
	if err := e.store.UpdateBalance(ctx, &rec); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}
	return &rec, nil
}

type Totals struct {
	LifetimeTotal int64
	MonthlyTotal  int64
}

// Compute returns the totals after applying op to current. A nil record
// counts as zero on both counters. Both counters move by the same delta,
// never drop below zero and saturate at math.MaxInt64.
func Compute(current *models.BalanceRecord, op models.BalanceOp, amount int64) Totals {
	var lifetime, monthly int64
	if current != nil {
		lifetime, monthly = current.LifetimeTotal, current.MonthlyTotal
	}
	switch op {
	case models.OpSet:
		return Totals{LifetimeTotal: amount, MonthlyTotal: shift(monthly, amount-lifetime)}
	case models.OpAdd:
		return Totals{LifetimeTotal: shift(lifetime, amount), MonthlyTotal: shift(monthly, amount)}
	case models.OpSubtract:
		return Totals{LifetimeTotal: floor(lifetime - amount), MonthlyTotal: floor(monthly - amount)}
	}
	return Totals{LifetimeTotal: lifetime, MonthlyTotal: monthly}
}

// shift adds delta to a non-negative counter, clamping to [0, MaxInt64].
func shift(v, delta int64) int64 {
	if delta > 0 && v > math.MaxInt64-delta {
		return math.MaxInt64
	}
	return floor(v + delta)
}

func floor(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
