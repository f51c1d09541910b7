package providers

import (
	"context"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// reconciliation events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ReconciliationEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ReconciliationEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelReconciliationUpdates carries every committed
	// reconciliation; the staff pending list listens here
	EventChannelReconciliationUpdates = "reconciliation:updates"

	// EventChannelPatientPrefix is the prefix for per-patient channels
	EventChannelPatientPrefix = "reconciliation:patient:"
)

// GetPatientChannel returns the channel name for a specific patient
func GetPatientChannel(patientID string) string {
	return EventChannelPatientPrefix + patientID
}
