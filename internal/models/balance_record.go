package models

import (
	"time"

	"github.com/google/uuid"
)

type BalanceRecord struct {
	CreatorID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"creator_id"`
	LifetimeTotal int64     `gorm:"not null;default:0;check:lifetime_total >= 0" json:"lifetime_total"`
	MonthlyTotal  int64     `gorm:"not null;default:0;check:monthly_total >= 0" json:"monthly_total"`
	Goal          int64     `gorm:"not null;default:0" json:"goal"`
	LastResetAt   time.Time `gorm:"not null" json:"last_reset_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type BalanceOp string

const (
	OpSet      BalanceOp = "set"
	OpAdd      BalanceOp = "add"
	OpSubtract BalanceOp = "subtract"
)

func (op BalanceOp) Valid() bool {
	switch op {
	case OpSet, OpAdd, OpSubtract:
		return true
	}
	return false
}

func (BalanceRecord) TableName() string { return "balances" }
