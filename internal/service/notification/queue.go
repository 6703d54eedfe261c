package notification

import (
	"sync"
	"time"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/google/uuid"
)

const (
	defaultDisplayWindow = 3 * time.Second
	defaultFadeDuration  = 300 * time.Millisecond
	defaultMaxActive     = 32
)

// Queue is a bounded, time-ordered queue of transient status messages. Every
// entry expires after a fixed display window plus the fade transition; expiry
// is advisory until ExpireDue purges it.
type Queue struct {
	window    time.Duration
	maxActive int
	now       func() time.Time

	mu      sync.Mutex
	entries []entity.Notification
}

type Option func(*Queue)

func WithDisplayWindow(visible, fade time.Duration) Option {
	return func(q *Queue) {
		q.window = visible + fade
	}
}

func WithMaxActive(max int) Option {
	return func(q *Queue) {
		q.maxActive = max
	}
}

func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		window:    defaultDisplayWindow + defaultFadeDuration,
		maxActive: defaultMaxActive,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Push appends a message. When the queue is full the oldest entry is dropped
// to make room.
func (q *Queue) Push(message string, severity entity.Severity) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now().UTC()
	n := entity.Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(q.window),
	}

	q.entries = append(q.entries, n)
	if len(q.entries) > q.maxActive {
		q.entries = q.entries[len(q.entries)-q.maxActive:]
	}

	return n.ID
}

// Active returns unpurged notifications, oldest first.
func (q *Queue) Active() []entity.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]entity.Notification, len(q.entries))
	copy(out, q.entries)

	return out
}

// ExpireDue purges entries whose expiry is at or before now.
func (q *Queue) ExpireDue(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.entries[:0]
	purged := 0
	for _, n := range q.entries {
		if n.Expired(now) {
			purged++
			continue
		}
		kept = append(kept, n)
	}
	q.entries = kept

	return purged
}

// Reset drops everything. Used on app-state teardown.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = nil
}
