package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"balloon_ofp/internal/models"
)

// DefaultSubject is the NATS subject accepted plans are published on
const DefaultSubject = "ofp.flight_plans.submitted"

// Publisher is the subset of *nats.Conn used for publishing
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSNotifier publishes the JSON record on a NATS subject
type NATSNotifier struct {
	pub     Publisher
	subject string
	conn    *nats.Conn
}

// NewNATSNotifier connects to the NATS server at url
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("balloon_ofp"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	n := NewNATSPublisherNotifier(conn, subject)
	n.conn = conn
	return n, nil
}

// NewNATSPublisherNotifier wraps an existing publisher
func NewNATSPublisherNotifier(pub Publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{pub: pub, subject: subject}
}

func (n *NATSNotifier) Notify(ctx context.Context, rec *models.FlightPlanRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	if err := n.pub.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

func (n *NATSNotifier) Name() string {
	return "nats"
}

// Close drains the connection if this notifier owns one
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
