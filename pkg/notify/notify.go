// Package notify carries the short operator-facing messages (toasts) raised
// when an upload finishes or is rejected.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification is one toast.
type Notification struct {
	ID      string
	Region  mailing.Region
	Level   Level
	Message string
	At      time.Time
}

// New stamps a notification with a fresh id and the current time.
func New(region mailing.Region, level Level, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Region:  region,
		Level:   level,
		Message: message,
		At:      time.Now(),
	}
}

// Notifier receives notifications. Implementations must not block for long.
type Notifier interface {
	Notify(Notification)
}

// Func adapts a plain function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Multi fans a notification out to every non-nil notifier.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}

// Discard drops everything.
var Discard Notifier = Func(func(Notification) {})

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"region", n.Region, "id", n.ID}
	switch n.Level {
	case LevelError:
		logger.Error(n.Message, attrs...)
	default:
		logger.Info(n.Message, append(attrs, "level", n.Level.String())...)
	}
}

// Recorder keeps every notification it receives. Safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// All returns a copy of everything recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Count returns how many notifications of level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.all {
		if item.Level == level {
			n++
		}
	}
	return n
}
