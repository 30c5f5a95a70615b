package enums

import "testing"

func TestOrderStatusForwardPath(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusPending},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusProcessing},
		{OrderStatusShipped, OrderStatusProcessing},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	if _, err := ParseOrderStatus("shipped"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOrderStatus("SHIPPED"); err == nil {
		t.Fatal("expected case-sensitive rejection")
	}
}
