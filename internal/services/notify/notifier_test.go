package notify

import (
	"context"
	"encoding/json"
	"testing"

	"creator-performance-ledger/internal/repository/memstore"

	"github.com/google/uuid"
)

func TestOutboxWritesPendingEvent(t *testing.T) {
	store := memstore.New()
	n := NewOutbox(store)
	ev := Event{BatchID: uuid.New(), Filename: "march.xlsx", SuccessCount: 4, ErrorCount: 1}

	if err := n.StatsRecompute(context.Background(), ev); err != nil {
		t.Fatalf("StatsRecompute: %v", err)
	}
	events := store.Events()
	if len(events) != 1 {
		t.Fatalf("events got=%d want=1", len(events))
	}
	if events[0].BatchID != ev.BatchID || events[0].Status != "pending" {
		t.Fatalf("event got=%+v", events[0])
	}
	var decoded Event
	if err := json.Unmarshal(events[0].Payload, &decoded); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if decoded.Filename != "march.xlsx" || decoded.SuccessCount != 4 {
		t.Fatalf("payload got=%+v", decoded)
	}
}
