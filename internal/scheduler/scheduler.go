package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task interface for scheduled tasks
type Task interface {
	Run(ctx context.Context) error
	Interval() time.Duration
	Name() string
}

// Scheduler runs periodic tasks until its context is cancelled
type Scheduler struct {
	mu    sync.Mutex
	tasks []Task
	wg    sync.WaitGroup
}

// New creates a new task scheduler
func New() *Scheduler {
	return &Scheduler{tasks: make([]Task, 0)}
}

// AddTask adds a task to the scheduler. Tasks with a non-positive interval run once.
func (s *Scheduler) AddTask(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Len returns the number of registered tasks
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Run starts every task and blocks until ctx is cancelled and all tasks have returned
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	tasks := append([]Task(nil), s.tasks...)
	s.mu.Unlock()

	slog.Info("Starting task scheduler", "task_count", len(tasks))
	for _, task := range tasks {
		s.wg.Add(1)
		go s.runTask(ctx, task)
	}

	<-ctx.Done()
	s.wg.Wait()
	slog.Info("Task scheduler stopped")
	return nil
}

// runTask runs a single task immediately and then on its interval
func (s *Scheduler) runTask(ctx context.Context, task Task) {
	defer s.wg.Done()

	s.runOnce(ctx, task)

	interval := task.Interval()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, task)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, task Task) {
	start := time.Now()
	if err := task.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("Error running task", "task", task.Name(), "error", err)
		return
	}
	slog.Debug("Task completed", "task", task.Name(), "duration", time.Since(start))
}
