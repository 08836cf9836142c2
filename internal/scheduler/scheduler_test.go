package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingTask struct {
	name     string
	interval time.Duration
	runs     atomic.Int32
	err      error
}

func (c *countingTask) Run(ctx context.Context) error {
	c.runs.Add(1)
	return c.err
}

func (c *countingTask) Interval() time.Duration { return c.interval }
func (c *countingTask) Name() string            { return c.name }

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	s := New()
	task := &countingTask{name: "tick", interval: 20 * time.Millisecond}
	s.AddTask(task)
	assert.Equal(t, 1, s.Len())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_RunOnceTask(t *testing.T) {
	s := New()
	once := &countingTask{name: "once"}
	failing := &countingTask{name: "failing", err: assert.AnError}
	s.AddTask(once)
	s.AddTask(failing)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, s.Run(ctx))
	assert.Equal(t, int32(1), once.runs.Load())
	assert.Equal(t, int32(1), failing.runs.Load())
}
