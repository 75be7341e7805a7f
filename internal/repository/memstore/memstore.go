// Package memstore is an in-memory stand-in for the Postgres repositories,
// with switches to inject storage failures.
package memstore

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"creator-performance-ledger/internal/models"
	"creator-performance-ledger/internal/repository"

	"github.com/google/uuid"
)

var ErrInjected = errors.New("injected storage failure")

type Store struct {
	mu        sync.Mutex
	members   []models.Member
	balances  map[uuid.UUID]models.BalanceRecord
	schedules map[uuid.UUID]models.ScheduleRecord
	events    []models.StatsRecomputeEvent

	// AtomicDisabled makes ApplyBalanceDelta fail, as when the SQL
	// function is missing.
	AtomicDisabled bool
	// Broken makes every balance and schedule write for a creator fail.
	Broken map[uuid.UUID]bool

	AtomicCalls   int
	FallbackCalls int
}

func New(members ...models.Member) *Store {
	return &Store{
		members:   members,
		balances:  map[uuid.UUID]models.BalanceRecord{},
		schedules: map[uuid.UUID]models.ScheduleRecord{},
		Broken:    map[uuid.UUID]bool{},
	}
}

func (s *Store) AddMember(m models.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = append(s.members, m)
}

func (s *Store) ListCreators(ctx context.Context) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Member
	for _, m := range s.members {
		if m.Role == models.RoleCreator {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Member(nil), s.members...), nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ApplyBalanceDelta(ctx context.Context, creatorID uuid.UUID, amount int64, op models.BalanceOp) (*models.BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AtomicCalls++
	if s.AtomicDisabled || s.Broken[creatorID] {
		return nil, ErrInjected
	}
	now := time.Now()
	rec, ok := s.balances[creatorID]
	if !ok {
		rec = models.BalanceRecord{CreatorID: creatorID, LastResetAt: now, CreatedAt: now}
		if op != models.OpSubtract {
			rec.LifetimeTotal, rec.MonthlyTotal = amount, amount
		}
	} else {
		var delta int64
		switch op {
		case models.OpSet:
			delta = amount - rec.LifetimeTotal
			rec.LifetimeTotal = amount
		case models.OpAdd:
			delta = amount
			rec.LifetimeTotal = capAdd(rec.LifetimeTotal, amount)
		case models.OpSubtract:
			delta = -amount
			rec.LifetimeTotal = max(0, rec.LifetimeTotal-amount)
		}
		rec.MonthlyTotal = max(0, capAdd(rec.MonthlyTotal, delta))
	}
	rec.UpdatedAt = now
	s.balances[creatorID] = rec
	return &rec, nil
}

// capAdd caps a+d at math.MaxInt64 for non-negative a, like the numeric
// LEAST in apply_balance_delta.
func capAdd(a, d int64) int64 {
	if d > 0 && a > math.MaxInt64-d {
		return math.MaxInt64
	}
	return a + d
}

func (s *Store) FindBalance(ctx context.Context, creatorID uuid.UUID) (*models.BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FallbackCalls++
	if s.Broken[creatorID] {
		return nil, ErrInjected
	}
	rec, ok := s.balances[creatorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) CreateBalance(ctx context.Context, rec *models.BalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Broken[rec.CreatorID] {
		return ErrInjected
	}
	if _, ok := s.balances[rec.CreatorID]; ok {
		return errors.New("duplicate balance record")
	}
	s.balances[rec.CreatorID] = *rec
	return nil
}

func (s *Store) UpdateBalance(ctx context.Context, rec *models.BalanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Broken[rec.CreatorID] {
		return ErrInjected
	}
	cur, ok := s.balances[rec.CreatorID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.LifetimeTotal = rec.LifetimeTotal
	cur.MonthlyTotal = rec.MonthlyTotal
	cur.UpdatedAt = time.Now()
	s.balances[rec.CreatorID] = cur
	return nil
}

// PutBalance seeds a balance record directly.
func (s *Store) PutBalance(rec models.BalanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[rec.CreatorID] = rec
}

func (s *Store) Balance(creatorID uuid.UUID) (models.BalanceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.balances[creatorID]
	return rec, ok
}

func (s *Store) ListBalances(ctx context.Context) ([]models.BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.BalanceRecord, 0, len(s.balances))
	for _, rec := range s.balances {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatorID.String() < out[j].CreatorID.String() })
	return out, nil
}

func (s *Store) ListBalancesFor(ctx context.Context, creatorIDs []uuid.UUID) ([]models.BalanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.BalanceRecord
	for _, id := range creatorIDs {
		if rec, ok := s.balances[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) ResetMonthly(ctx context.Context, creatorID uuid.UUID, monthStart, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Broken[creatorID] {
		return false, ErrInjected
	}
	rec, ok := s.balances[creatorID]
	if !ok || !rec.LastResetAt.Before(monthStart) {
		return false, nil
	}
	rec.MonthlyTotal = 0
	rec.LastResetAt = now
	rec.UpdatedAt = now
	s.balances[creatorID] = rec
	return true, nil
}

func (s *Store) FindSchedule(ctx context.Context, creatorID uuid.UUID) (*models.ScheduleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Broken[creatorID] {
		return nil, ErrInjected
	}
	rec, ok := s.schedules[creatorID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (s *Store) CreateSchedule(ctx context.Context, rec *models.ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Broken[rec.CreatorID] {
		return ErrInjected
	}
	if _, ok := s.schedules[rec.CreatorID]; ok {
		return errors.New("duplicate schedule record")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	s.schedules[rec.CreatorID] = *rec
	return nil
}

func (s *Store) UpdateSchedule(ctx context.Context, rec *models.ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Broken[rec.CreatorID] {
		return ErrInjected
	}
	if _, ok := s.schedules[rec.CreatorID]; !ok {
		return repository.ErrNotFound
	}
	s.schedules[rec.CreatorID] = *rec
	return nil
}

func (s *Store) Schedule(creatorID uuid.UUID) (models.ScheduleRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.schedules[creatorID]
	return rec, ok
}

func (s *Store) ListSchedulesFor(ctx context.Context, creatorIDs []uuid.UUID) ([]models.ScheduleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ScheduleRecord
	for _, id := range creatorIDs {
		if rec, ok := s.schedules[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) CreateEvent(ctx context.Context, ev *models.StatsRecomputeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *ev)
	return nil
}

func (s *Store) Events() []models.StatsRecomputeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.StatsRecomputeEvent(nil), s.events...)
}
