package tasks

import (
	"context"
	"sync"
	"testing"
	"time"

	"balloon_ofp/internal/models"
	"balloon_ofp/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository is a simple mock implementation of database.FlightPlanRepository
type mockRepository struct {
	mu     sync.Mutex
	sent   map[string]time.Time
	errors []error
}

func (m *mockRepository) Save(ctx context.Context, rec *models.FlightPlanRecord) (string, error) {
	return rec.ID, nil
}

func (m *mockRepository) Get(ctx context.Context, id string) (*models.FlightPlanRecord, error) {
	return nil, nil
}

func (m *mockRepository) List(ctx context.Context, limit int) ([]*models.FlightPlanRecord, error) {
	return nil, nil
}

func (m *mockRepository) MarkEmailSent(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.errors) > 0 {
		err := m.errors[0]
		m.errors = m.errors[1:]
		return err
	}
	if m.sent == nil {
		m.sent = make(map[string]time.Time)
	}
	m.sent[id] = at
	return nil
}

func (m *mockRepository) sentIDs() map[string]time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]time.Time, len(m.sent))
	for k, v := range m.sent {
		out[k] = v
	}
	return out
}

type mockNotifier struct {
	mu       sync.Mutex
	received []string
	failFor  map[string]bool
}

func (m *mockNotifier) Notify(ctx context.Context, rec *models.FlightPlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, rec.ID)
	if m.failFor[rec.ID] {
		return assert.AnError
	}
	return nil
}

func (m *mockNotifier) Name() string { return "mock" }

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}

func TestNewNotificationDispatcher(t *testing.T) {
	d := NewNotificationDispatcher(&mockRepository{}, &mockNotifier{})

	require.NotNil(t, d)
	assert.Equal(t, 100, cap(d.queue))
	assert.Equal(t, 30*time.Second, d.sendTimeout)
}

func TestNotificationDispatcher_DeliversAndMarksSent(t *testing.T) {
	repo := &mockRepository{}
	notifier := &mockNotifier{failFor: map[string]bool{"b": true}}
	d := NewNotificationDispatcherWithConfig(repo, notifier, 10, time.Second)
	fixed := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = d.Start(ctx)
	}()

	for _, id := range []string{"a", "b", "c"} {
		assert.True(t, d.Enqueue(&models.FlightPlanRecord{ID: id}))
	}

	assert.Eventually(t, func() bool { return notifier.count() == 3 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(repo.sentIDs()) == 2 }, time.Second, 10*time.Millisecond)

	sent := repo.sentIDs()
	assert.Equal(t, fixed, sent["a"])
	assert.Equal(t, fixed, sent["c"])
	assert.NotContains(t, sent, "b", "failed delivery is not marked sent")
}

func TestNotificationDispatcher_MarkErrorIsSwallowed(t *testing.T) {
	repo := &mockRepository{errors: []error{assert.AnError}}
	notifier := &mockNotifier{}
	d := NewNotificationDispatcherWithConfig(repo, notifier, 10, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = d.Start(ctx)
	}()

	d.Enqueue(&models.FlightPlanRecord{ID: "a"})
	d.Enqueue(&models.FlightPlanRecord{ID: "b"})

	assert.Eventually(t, func() bool { return len(repo.sentIDs()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Contains(t, repo.sentIDs(), "b")
}

func TestNotificationDispatcher_QueueFull(t *testing.T) {
	d := NewNotificationDispatcherWithConfig(&mockRepository{}, &mockNotifier{}, 1, time.Second)

	assert.True(t, d.Enqueue(&models.FlightPlanRecord{ID: "a"}))
	assert.False(t, d.Enqueue(&models.FlightPlanRecord{ID: "b"}))
	assert.False(t, d.Enqueue(nil))
}

func TestNotificationDispatcher_DrainsOnShutdown(t *testing.T) {
	repo := &mockRepository{}
	notifier := &mockNotifier{}
	d := NewNotificationDispatcherWithConfig(repo, notifier, 10, time.Second)

	d.Enqueue(&models.FlightPlanRecord{ID: "a"})
	d.Enqueue(&models.FlightPlanRecord{ID: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, d.Start(ctx))
	assert.Equal(t, 2, notifier.count())
	assert.Len(t, repo.sentIDs(), 2)
}

type stubSource struct {
	sample models.WeatherSample
	err    error
}

func (s *stubSource) Fetch(ctx context.Context) (models.WeatherSample, error) {
	return s.sample, s.err
}

func TestWeatherRefresh(t *testing.T) {
	latest := &weather.Latest{}
	src := &stubSource{sample: models.WeatherSample{SurfaceTemperatureC: 14, Source: "Open-Meteo"}}
	task := NewWeatherRefresh(src, latest, 0)

	assert.Equal(t, 15*time.Minute, task.Interval())
	assert.Equal(t, "weather_refresh", task.Name())

	require.NoError(t, task.Run(context.Background()))
	got, ok := latest.Get()
	require.True(t, ok)
	assert.Equal(t, 14.0, got.SurfaceTemperatureC)

	src.err = weather.ErrWeatherUnavailable
	src.sample = models.WeatherSample{SurfaceTemperatureC: 99}
	assert.ErrorIs(t, task.Run(context.Background()), weather.ErrWeatherUnavailable)

	got, _ = latest.Get()
	assert.Equal(t, 14.0, got.SurfaceTemperatureC, "failed refresh keeps the previous sample")
}
