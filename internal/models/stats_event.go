package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StatsRecomputeEvent is an outbox row asking the dashboard side to rebuild
// its aggregate figures after an import batch.
type StatsRecomputeEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	BatchID     uuid.UUID      `gorm:"type:uuid;index"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"index"`
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
