package repository

import (
	"fmt"

	"creator-performance-ledger/internal/models"

	"gorm.io/gorm"
)

// applyBalanceDeltaSQL keeps lifetime and monthly totals moving together:
// set shifts the monthly figure by the same difference as the lifetime one,
// and both are floored at zero. Sums are taken in numeric and capped at the
// bigint maximum so an add never overflows.
const applyBalanceDeltaSQL = `
CREATE OR REPLACE FUNCTION apply_balance_delta(p_creator_id uuid, p_amount bigint, p_op text)
RETURNS SETOF balances
LANGUAGE sql
AS $$
	INSERT INTO balances AS b (creator_id, lifetime_total, monthly_total, goal, last_reset_at, created_at, updated_at)
	VALUES (
		p_creator_id,
		CASE WHEN p_op = 'subtract' THEN 0 ELSE p_amount END,
		CASE WHEN p_op = 'subtract' THEN 0 ELSE p_amount END,
		0, now(), now(), now()
	)
	ON CONFLICT (creator_id) DO UPDATE SET
		lifetime_total = CASE p_op
			WHEN 'set' THEN p_amount
			WHEN 'add' THEN LEAST(b.lifetime_total::numeric + p_amount, 9223372036854775807)::bigint
			ELSE GREATEST(0, b.lifetime_total - p_amount)
		END,
		monthly_total = LEAST(GREATEST(0, b.monthly_total::numeric + CASE p_op
			WHEN 'set' THEN p_amount - b.lifetime_total
			WHEN 'add' THEN p_amount
			ELSE -p_amount
		END), 9223372036854775807)::bigint,
		updated_at = now()
	RETURNING *
$$;`

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Member{},
		&models.BalanceRecord{},
		&models.ScheduleRecord{},
		&models.StatsRecomputeEvent{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(applyBalanceDeltaSQL).Error; err != nil {
		return fmt.Errorf("create apply_balance_delta: %w", err)
	}
	return nil
}
