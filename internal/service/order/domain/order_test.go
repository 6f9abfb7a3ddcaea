package domain

import "testing"

func TestNewOrderValidation(t *testing.T) {
	if _, err := NewOrder(0, "user-1", 10); err == nil {
		t.Error("expected error for missing product id")
	}
	if _, err := NewOrder(1, "", 10); err == nil {
		t.Error("expected error for missing requester id")
	}

	order, err := NewOrder(1, "user-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.State != StateCreated {
		t.Errorf("new order should start in CREATED, got %s", order.State)
	}
	if order.ID != "" {
		t.Errorf("order id is assigned by the repository, got %q", order.ID)
	}
}

func TestConfirmTransitions(t *testing.T) {
	order, _ := NewOrder(1, "user-1", 10)
	if err := order.Confirm(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.State != StateConfirmed {
		t.Errorf("expected CONFIRMED, got %s", order.State)
	}
	if err := order.Confirm(); err == nil {
		t.Error("confirming a confirmed order must fail")
	}
}
