package events

import (
	"context"
	"testing"
	"time"

	"outreach_backend/platform/logger"
)

type pingEvent struct {
	BaseEvent
}

func (pingEvent) EventName() string { return "test.ping" }

func TestNewBaseEventStampsIDAndTime(t *testing.T) {
	first := NewBaseEvent()
	second := NewBaseEvent()

	if first.EventID() == "" {
		t.Fatal("expected a non-empty event id")
	}
	if first.EventID() == second.EventID() {
		t.Fatalf("event ids must be unique, both were %q", first.EventID())
	}
	if first.OccurredAt().IsZero() {
		t.Fatal("expected a timestamp")
	}
}

func TestPublishSyncDeliversToSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var got Event
	bus.Subscribe("test.ping", HandlerFunc(func(ctx context.Context, e Event) error {
		got = e
		return nil
	}))

	ev := pingEvent{BaseEvent: NewBaseEvent()}
	if err := bus.PublishSync(context.Background(), ev); err != nil {
		t.Fatalf("publish sync: %v", err)
	}
	if got == nil {
		t.Fatal("handler was not invoked")
	}
	if got.EventID() != ev.EventID() {
		t.Fatalf("handler saw event %q, published %q", got.EventID(), ev.EventID())
	}
	if time.Since(got.OccurredAt()) > time.Minute {
		t.Fatalf("stale timestamp %v", got.OccurredAt())
	}
}
