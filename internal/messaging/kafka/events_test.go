package kafka

import "testing"

func TestNewOrderEvent(t *testing.T) {
	event := NewOrderEvent(EventTypeOrderCreated, 7, 42, "pending", map[string]interface{}{"total": 1000})

	if event.EventID == "" {
		t.Fatal("expected generated event id")
	}
	if event.EventType != EventTypeOrderCreated {
		t.Fatalf("unexpected event type: %s", event.EventType)
	}
	if event.OrderID != 7 || event.ActorID != 42 {
		t.Fatalf("unexpected ids: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
}

func TestNewProductEvent(t *testing.T) {
	event := NewProductEvent(EventTypeProductDeleted, 5, nil)
	if event.ProductID != 5 || event.EventType != EventTypeProductDeleted {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestKeys(t *testing.T) {
	if OrderKey(7) != "7" {
		t.Fatalf("unexpected order key: %s", OrderKey(7))
	}
	if ProductKey(12) != "12" {
		t.Fatalf("unexpected product key: %s", ProductKey(12))
	}
}
