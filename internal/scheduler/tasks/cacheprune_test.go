package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipstream/mona/internal/cache"
	"github.com/slipstream/mona/internal/scheduler"
)

type sizeRecorder struct {
	last int
}

func (r *sizeRecorder) SetCacheEntries(n int) {
	r.last = n
}

func TestCachePruneFunc(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.New(cache.Config{Now: func() time.Time { return now }})
	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)
	c.Set("forever", 3, cache.NoExpiration)
	now = now.Add(time.Minute)

	rec := &sizeRecorder{}
	require.NoError(t, CachePruneFunc(c, rec, zerolog.Nop())(context.Background()))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, rec.last)
}

func TestRegisterCachePruneTask(t *testing.T) {
	sched, err := scheduler.New(zerolog.Nop())
	require.NoError(t, err)
	defer sched.Stop()

	c := cache.New(cache.DefaultConfig())

	require.NoError(t, RegisterCachePruneTask(sched, c, "", nil, zerolog.Nop()))
	assert.Empty(t, sched.ListTasks(), "empty schedule disables the task")

	require.NoError(t, RegisterCachePruneTask(sched, c, "*/10 * * * *", nil, zerolog.Nop()))
	tasks := sched.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, CachePruneTaskID, tasks[0].ID)
	assert.NoError(t, sched.RunNow(CachePruneTaskID))
}
