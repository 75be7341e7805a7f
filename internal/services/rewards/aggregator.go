package rewards

import (
	"context"
	"errors"
	"fmt"

	"creator-performance-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultThreshold int64 = 36000

var (
	ErrInvalidScope  = errors.New("invalid rollup scope")
	ErrNodeNotFound  = errors.New("hierarchy node not found")
	ErrScopeMismatch = errors.New("node role does not match scope")
)

type Store interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	ListBalancesFor(ctx context.Context, creatorIDs []uuid.UUID) ([]models.BalanceRecord, error)
	ListSchedulesFor(ctx context.Context, creatorIDs []uuid.UUID) ([]models.ScheduleRecord, error)
}

type CreatorRollup struct {
	CreatorID   uuid.UUID       `json:"creator_id"`
	Username    string          `json:"username"`
	HoursPerDay decimal.Decimal `json:"hours_per_day"`
	DaysPerWeek int             `json:"days_per_week"`
	Balance     int64           `json:"balance"`
	Threshold   int64           `json:"threshold"`
	Progress    float64         `json:"progress_percent"`
	Eligible    bool            `json:"reward_eligible"`
}

type Rollup struct {
	NodeID              uuid.UUID       `json:"node_id"`
	Scope               models.Role     `json:"scope"`
	CreatorCount        int             `json:"creator_count"`
	TotalHours          decimal.Decimal `json:"total_hours"`
	TotalDays           int             `json:"total_days"`
	TotalBalance        int64           `json:"total_balance"`
	RewardEligibleCount int             `json:"reward_eligible_count"`
	Creators            []CreatorRollup `json:"creators"`
}

// Aggregator computes read-only rollups. Every call reads current records;
// nothing is cached between calls.
type Aggregator struct {
	store     Store
	threshold int64
}

func NewAggregator(store Store, threshold int64) *Aggregator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Aggregator{store: store, threshold: threshold}
}

func (a *Aggregator) Rollup(ctx context.Context, nodeID uuid.UUID, scope models.Role) (*Rollup, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	members, err := a.store.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	byID := make(map[uuid.UUID]models.Member, len(members))
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, m := range members {
		byID[m.ID] = m
		if m.ParentID != nil {
			children[*m.ParentID] = append(children[*m.ParentID], m.ID)
		}
	}
	node, ok := byID[nodeID]
	if !ok {
		return nil, ErrNodeNotFound
	}
	if node.Role != scope {
		return nil, fmt.Errorf("%w: node is %s, scope is %s", ErrScopeMismatch, node.Role, scope)
	}

	creators := descendantCreators(nodeID, byID, children)
	ids := make([]uuid.UUID, len(creators))
	for i, c := range creators {
		ids[i] = c.ID
	}

	balances, err := a.store.ListBalancesFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	schedules, err := a.store.ListSchedulesFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	balanceOf := make(map[uuid.UUID]models.BalanceRecord, len(balances))
	for _, b := range balances {
		balanceOf[b.CreatorID] = b
	}
	scheduleOf := make(map[uuid.UUID]models.ScheduleRecord, len(schedules))
	for _, s := range schedules {
		if s.Active {
			scheduleOf[s.CreatorID] = s
		}
	}

	out := &Rollup{
		NodeID:     nodeID,
		Scope:      scope,
		TotalHours: decimal.Zero,
		Creators:   make([]CreatorRollup, 0, len(creators)),
	}
	for _, c := range creators {
		bal := balanceOf[c.ID]
		sched := scheduleOf[c.ID]
		cr := CreatorRollup{
			CreatorID:   c.ID,
			Username:    c.Username,
			HoursPerDay: sched.HoursPerDay,
			DaysPerWeek: sched.DaysPerWeek,
			Balance:     bal.LifetimeTotal,
			Threshold:   a.thresholdFor(bal),
		}
		cr.Eligible = cr.Balance >= cr.Threshold
		cr.Progress = progress(cr.Balance, cr.Threshold)

		out.TotalHours = out.TotalHours.Add(cr.HoursPerDay)
		out.TotalDays += cr.DaysPerWeek
		out.TotalBalance += cr.Balance
		if cr.Eligible {
			out.RewardEligibleCount++
		}
		out.Creators = append(out.Creators, cr)
	}
	out.CreatorCount = len(out.Creators)
	return out, nil
}

// thresholdFor applies a per-creator goal when one is set.
func (a *Aggregator) thresholdFor(b models.BalanceRecord) int64 {
	if b.Goal > 0 {
		return b.Goal
	}
	return a.threshold
}

func descendantCreators(root uuid.UUID, byID map[uuid.UUID]models.Member, children map[uuid.UUID][]uuid.UUID) []models.Member {
	var out []models.Member
	seen := map[uuid.UUID]bool{root: true}
	queue := []uuid.UUID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if m := byID[id]; m.Role == models.RoleCreator {
			out = append(out, m)
		}
		for _, child := range children[id] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return out
}

func progress(balance, threshold int64) float64 {
	if threshold <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(balance).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(threshold)).Round(2)
	f, _ := pct.Float64()
	return f
}
