package models

import "testing"

func TestParseOrderStatus(t *testing.T) {
	cases := []struct {
		in   string
		want OrderStatus
		ok   bool
	}{
		{"DRAFT", OrderStatusDraft, true},
		{"draft", OrderStatusDraft, true},
		{" Pending ", OrderStatusPending, true},
		{"processing", OrderStatusProcessing, true},
		{"COMPLETED", OrderStatusCompleted, true},
		{"cancelled", OrderStatusCancelled, true},
		{"", "", false},
		{"unknown", "", false},
	}
	for _, c := range cases {
		got, ok := ParseOrderStatus(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("ParseOrderStatus(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusDraft:      {OrderStatusDraft, OrderStatusPending, OrderStatusCancelled},
		OrderStatusPending:    {OrderStatusPending, OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled},
		OrderStatusCompleted:  {OrderStatusCompleted},
		OrderStatusCancelled:  {OrderStatusCancelled},
	}
	all := []OrderStatus{OrderStatusDraft, OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled}

	for from, nexts := range allowed {
		ok := map[OrderStatus]bool{}
		for _, n := range nexts {
			ok[n] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != ok[to] {
				t.Fatalf("%s -> %s: got %v want %v", from, to, got, ok[to])
			}
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if OrderStatusDraft.Terminal() || OrderStatusPending.Terminal() || OrderStatusProcessing.Terminal() {
		t.Fatalf("non-terminal status reported terminal")
	}
	if !OrderStatusCompleted.Terminal() || !OrderStatusCancelled.Terminal() {
		t.Fatalf("terminal status not reported terminal")
	}
}
