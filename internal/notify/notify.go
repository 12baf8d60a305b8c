// Package notify is the fire-and-forget channel the listing form reports
// outcomes on ("Listing created successfully!", "Failed to create listing").
//
// The form only knows the Notifier interface. What happens to a message
// (logged, queued for a client to poll, both) is the host's decision.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

// Notification is one transient message.
type Notification struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// Notifier delivers a notification. Implementations must not block the
// caller for long and must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// Log writes notifications to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, severity Severity, message string) {
	level := slog.LevelInfo
	if severity == Error {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "notification",
		slog.String("severity", string(severity)),
		slog.String("message", message),
	)
}

// DefaultQueueSize bounds a Queue created with a non-positive size.
const DefaultQueueSize = 32

// Queue buffers notifications until someone drains them. When full, the
// oldest entry is dropped: these are toasts, and a stale one is worth less
// than a fresh one.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	size  int
	now   func() time.Time
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{size: size, now: time.Now}
}

func (q *Queue) Notify(_ context.Context, severity Severity, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == q.size {
		q.items = q.items[1:]
	}
	q.items = append(q.items, Notification{Severity: severity, Message: message, At: q.now()})
}

// Drain returns everything queued, oldest first, and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Multi fans a notification out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, severity Severity, message string) {
	for _, n := range m {
		n.Notify(ctx, severity, message)
	}
}
