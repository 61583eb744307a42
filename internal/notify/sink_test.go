package notify

import (
	"context"
	"testing"
	"time"
)

func TestMemorySinkPreservesPublishOrder(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	sink.Publish(context.Background(), New(TypeEventCreated, now, EventCreatedPayload{EventID: "evt-1"}))
	sink.Publish(context.Background(), New(TypeEventStatusChanged, now, EventStatusChangedPayload{EventID: "evt-1"}))
	sink.Publish(context.Background(), New(TypeRegistered, now, RegisteredPayload{EventID: "evt-1", Attendee: "alice"}))

	got := sink.Notifications()
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	wantOrder := []Type{TypeEventCreated, TypeEventStatusChanged, TypeRegistered}
	for i, typ := range wantOrder {
		if got[i].Type != typ {
			t.Fatalf("position %d: expected %s, got %s", i, typ, got[i].Type)
		}
	}

	last, ok := sink.Last()
	if !ok || last.Type != TypeRegistered {
		t.Fatalf("expected last notification to be %s, got %v", TypeRegistered, last.Type)
	}
	if last.ID == got[0].ID {
		t.Fatal("expected distinct notification ids")
	}
}
