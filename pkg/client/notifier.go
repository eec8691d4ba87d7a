package client

import (
	"sync"
	"time"
)

// Toast kinds mirror the two notification styles the UI renders.
const (
	ToastSuccess = "success"
	ToastDanger  = "danger"
)

// Toast is one transient notification.
type Toast struct {
	Message string
	Kind    string
}

const defaultDismissAfter = 5 * time.Second

// Notifier keeps an ordered list of active toasts. Each toast dismisses
// itself after a fixed delay.
type Notifier struct {
	mu           sync.Mutex
	toasts       []Toast
	dismissAfter time.Duration
}

// NewNotifier returns a notifier with the 5-second auto-dismiss delay.
func NewNotifier() *Notifier {
	return &Notifier{dismissAfter: defaultDismissAfter}
}

// Show appends a toast and schedules its dismissal.
func (n *Notifier) Show(message, kind string) {
	n.mu.Lock()
	n.toasts = append(n.toasts, Toast{Message: message, Kind: kind})
	delay := n.dismissAfter
	n.mu.Unlock()
	time.AfterFunc(delay, func() { n.Dismiss(message) })
}

// Dismiss removes every active toast with the given message.
func (n *Notifier) Dismiss(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.toasts[:0]
	for _, t := range n.toasts {
		if t.Message != message {
			kept = append(kept, t)
		}
	}
	n.toasts = kept
}

// Active returns a snapshot of the toasts currently shown, oldest first.
func (n *Notifier) Active() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Toast, len(n.toasts))
	copy(out, n.toasts)
	return out
}
