// Package notify delivers accepted flight plans to operations.
package notify

import (
	"context"
	"errors"
	"fmt"

	"balloon_ofp/internal/models"
)

// Notifier delivers a flight plan record somewhere outside the service
type Notifier interface {
	Notify(ctx context.Context, rec *models.FlightPlanRecord) error
	Name() string
}

// Multi fans a record out to every notifier and joins their errors
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, rec *models.FlightPlanRecord) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Name() string {
	return "multi"
}
