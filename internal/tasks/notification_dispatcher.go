package tasks

import (
	"context"
	"log/slog"
	"time"

	"balloon_ofp/internal/database"
	"balloon_ofp/internal/models"
	"balloon_ofp/internal/notify"
)

// NotificationDispatcher delivers saved flight plans to the notifier in the background.
// Delivery failures are logged and never reach the submitter.
type NotificationDispatcher struct {
	repo         database.FlightPlanRepository
	notifier     notify.Notifier
	queue        chan *models.FlightPlanRecord
	sendTimeout  time.Duration
	drainTimeout time.Duration
	now          func() time.Time
}

// Default queue size is 100 records and each delivery gets 30 seconds
func NewNotificationDispatcher(repo database.FlightPlanRepository, notifier notify.Notifier) *NotificationDispatcher {
	return NewNotificationDispatcherWithConfig(repo, notifier, 100, 30*time.Second)
}

// NewNotificationDispatcherWithConfig creates a dispatcher with a custom queue size and per-delivery timeout
func NewNotificationDispatcherWithConfig(repo database.FlightPlanRepository, notifier notify.Notifier, queueSize int, sendTimeout time.Duration) *NotificationDispatcher {
	if queueSize <= 0 {
		queueSize = 100
	}
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &NotificationDispatcher{
		repo:         repo,
		notifier:     notifier,
		queue:        make(chan *models.FlightPlanRecord, queueSize),
		sendTimeout:  sendTimeout,
		drainTimeout: 10 * time.Second,
		now:          time.Now,
	}
}

// Enqueue schedules a record for delivery without blocking.
// It returns false when the queue is full and the record was dropped.
func (d *NotificationDispatcher) Enqueue(rec *models.FlightPlanRecord) bool {
	if rec == nil {
		return false
	}
	select {
	case d.queue <- rec:
		return true
	default:
		slog.Warn("Notification queue full, dropping record", "id", rec.ID, "queue_size", cap(d.queue))
		return false
	}
}

// Start delivers queued records until the context is cancelled.
// Records still queued at shutdown are delivered within the drain timeout.
func (d *NotificationDispatcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil

		case rec := <-d.queue:
			d.deliver(ctx, rec)
		}
	}
}

func (d *NotificationDispatcher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	for {
		select {
		case rec := <-d.queue:
			d.deliver(ctx, rec)
		default:
			return
		}
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, rec *models.FlightPlanRecord) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.notifier.Notify(sendCtx, rec); err != nil {
		slog.Error("Failed to send flight plan notification",
			"id", rec.ID,
			"pilot", rec.Plan.PilotName,
			"notifier", d.notifier.Name(),
			"error", err,
		)
		return
	}

	sentAt := d.now().UTC()
	if err := d.repo.MarkEmailSent(sendCtx, rec.ID, sentAt); err != nil {
		slog.Error("Failed to record notification time", "id", rec.ID, "error", err)
		return
	}

	slog.Info("Flight plan notification sent",
		"id", rec.ID,
		"pilot", rec.Plan.PilotName,
		"flight_date", rec.Plan.FlightDate,
	)
}
