// Package notify tells downstream dashboards that aggregate stats should be
// recomputed after an import batch.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creator-performance-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

const DefaultChannel = "stats:recompute"

type Event struct {
	BatchID      uuid.UUID `json:"batch_id"`
	Filename     string    `json:"filename"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	FinishedAt   time.Time `json:"finished_at"`
}

type Notifier interface {
	StatsRecompute(ctx context.Context, ev Event) error
}

type Nop struct{}

func (Nop) StatsRecompute(context.Context, Event) error { return nil }

type Redis struct {
	client  redis.Cmdable
	channel string
}

func NewRedis(client redis.Cmdable, channel string) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{client: client, channel: channel}
}

func (n *Redis) StatsRecompute(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", n.channel, err)
	}
	return nil
}

type EventStore interface {
	CreateEvent(ctx context.Context, ev *models.StatsRecomputeEvent) error
}

// Outbox records the request as a pending row for a relay to pick up.
type Outbox struct {
	store EventStore
}

func NewOutbox(store EventStore) *Outbox {
	return &Outbox{store: store}
}

func (n *Outbox) StatsRecompute(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.store.CreateEvent(ctx, &models.StatsRecomputeEvent{
		ID:        uuid.New(),
		BatchID:   ev.BatchID,
		Payload:   datatypes.JSON(payload),
		Status:    "pending",
		CreatedAt: time.Now(),
	})
}
