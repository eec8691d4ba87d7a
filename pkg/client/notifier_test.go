package client

import (
	"testing"
	"time"
)

func TestNotifierShowsInOrderAndAutoDismisses(t *testing.T) {
	n := NewNotifier()
	n.dismissAfter = 20 * time.Millisecond

	n.Show("Added to favorites", ToastSuccess)
	n.Show("Removed from favorites", ToastDanger)

	active := n.Active()
	if len(active) != 2 {
		t.Fatalf("expected 2 active toasts, got %d", len(active))
	}
	if active[0].Message != "Added to favorites" || active[1].Message != "Removed from favorites" {
		t.Fatalf("toasts out of order: %+v", active)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(n.Active()) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("toasts never dismissed: %+v", n.Active())
}

func TestDismissRemovesAllMatchingMessages(t *testing.T) {
	n := NewNotifier()
	n.dismissAfter = time.Minute

	n.Show("Added to favorites", ToastSuccess)
	n.Show("Added to favorites", ToastSuccess)
	n.Show("Removed from favorites", ToastDanger)

	n.Dismiss("Added to favorites")

	active := n.Active()
	if len(active) != 1 || active[0].Message != "Removed from favorites" {
		t.Fatalf("unexpected active toasts: %+v", active)
	}
}

func TestActiveReturnsACopy(t *testing.T) {
	n := NewNotifier()
	n.dismissAfter = time.Minute
	n.Show("Added to favorites", ToastSuccess)

	snapshot := n.Active()
	snapshot[0].Message = "mutated"

	if n.Active()[0].Message != "Added to favorites" {
		t.Fatalf("Active must not expose internal state")
	}
}
