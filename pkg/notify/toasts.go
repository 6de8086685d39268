package notify

import "time"

// Toasts is the bounded, expiring stack of notifications shown in the TUI.
// It is a value type owned by the Bubble Tea model, so it is not locked.
type Toasts struct {
	items []Notification
	max   int
	ttl   time.Duration
}

func NewToasts(max int, ttl time.Duration) Toasts {
	if max <= 0 {
		max = 3
	}
	return Toasts{max: max, ttl: ttl}
}

// Push adds n on top, dropping the oldest when full.
func (t *Toasts) Push(n Notification) {
	t.items = append(t.items, n)
	if len(t.items) > t.max {
		t.items = t.items[len(t.items)-t.max:]
	}
}

// Expire drops notifications older than the TTL. A zero TTL keeps everything.
func (t *Toasts) Expire(now time.Time) {
	if t.ttl <= 0 {
		return
	}
	kept := t.items[:0]
	for _, n := range t.items {
		if now.Sub(n.At) < t.ttl {
			kept = append(kept, n)
		}
	}
	t.items = kept
}

// Items returns the visible notifications, newest last.
func (t Toasts) Items() []Notification {
	out := make([]Notification, len(t.items))
	copy(out, t.items)
	return out
}

func (t Toasts) Len() int {
	return len(t.items)
}
