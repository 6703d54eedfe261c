package notification

import (
	"testing"
	"time"

	"github.com/ghalbir/trading-client/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PushAndActiveOrdering(t *testing.T) {
	current := time.Date(2025, 4, 17, 18, 0, 0, 0, time.UTC)
	q := NewQueue(WithClock(func() time.Time { return current }))

	q.Push("Login successful", entity.SeveritySuccess)
	current = current.Add(time.Second)
	q.Push("Buy order placed successfully", entity.SeveritySuccess)

	active := q.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "Login successful", active[0].Message)
	assert.Equal(t, "Buy order placed successfully", active[1].Message)
	assert.True(t, active[0].ExpiresAt.After(active[0].CreatedAt))
}

func TestQueue_ExpireDue(t *testing.T) {
	current := time.Date(2025, 4, 17, 18, 0, 0, 0, time.UTC)
	q := NewQueue(
		WithClock(func() time.Time { return current }),
		WithDisplayWindow(3*time.Second, 300*time.Millisecond),
	)

	q.Push("first", entity.SeverityInfo)
	current = current.Add(2 * time.Second)
	q.Push("second", entity.SeverityInfo)

	// Advisory until purged: the entry is still present at its deadline.
	assert.Len(t, q.Active(), 2)

	purged := q.ExpireDue(current.Add(1300 * time.Millisecond))
	assert.Equal(t, 1, purged)

	active := q.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Message)
}

func TestQueue_BoundedDropsOldest(t *testing.T) {
	q := NewQueue(WithMaxActive(2))

	q.Push("one", entity.SeverityInfo)
	q.Push("two", entity.SeverityInfo)
	q.Push("three", entity.SeverityInfo)

	active := q.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "two", active[0].Message)
	assert.Equal(t, "three", active[1].Message)
}

func TestQueue_Reset(t *testing.T) {
	q := NewQueue()
	q.Push("one", entity.SeverityWarning)

	q.Reset()

	assert.Empty(t, q.Active())
}
