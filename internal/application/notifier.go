package application

import (
	"context"

	"homematic-voice/internal/domain"
)

// Notifier is told about every outcome that switched, or failed to switch, a device.
type Notifier interface {
	Notify(ctx context.Context, outcome domain.Outcome) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ domain.Outcome) error {
	return nil
}
