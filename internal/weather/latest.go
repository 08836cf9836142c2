package weather

import (
	"context"
	"sync"
	"time"

	"balloon_ofp/internal/models"
)

// Source produces weather samples
type Source interface {
	Fetch(ctx context.Context) (models.WeatherSample, error)
}

// Latest holds the most recent sample fetched by the refresh task
type Latest struct {
	mu        sync.RWMutex
	sample    models.WeatherSample
	ok        bool
	fetchedAt time.Time
}

// Set replaces the stored sample
func (l *Latest) Set(s models.WeatherSample, fetchedAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sample = s
	l.ok = true
	l.fetchedAt = fetchedAt
}

// Get returns the stored sample and whether one has been fetched yet
func (l *Latest) Get() (models.WeatherSample, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := l.sample
	s.WindsAloft = append([]models.WindAloft(nil), l.sample.WindsAloft...)
	return s, l.ok
}

// FetchedAt returns when the stored sample was fetched
func (l *Latest) FetchedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fetchedAt
}

// Fresh returns the stored sample if it is younger than maxAge,
// otherwise fetches a new one from src and stores it
func (l *Latest) Fresh(ctx context.Context, src Source, maxAge time.Duration, now time.Time) (models.WeatherSample, error) {
	if s, ok := l.Get(); ok && now.Sub(l.FetchedAt()) < maxAge {
		return s, nil
	}
	s, err := src.Fetch(ctx)
	if err != nil {
		return models.WeatherSample{}, err
	}
	l.Set(s, now)
	return s, nil
}
