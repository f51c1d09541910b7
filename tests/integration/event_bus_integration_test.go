//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andesalud/clinica-backend/internal/adapters/events"
	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/domain/providers"
)

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	channel := providers.EventChannelReconciliationUpdates
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel1()
	defer cancel2()

	sub1, err := eventBus.Subscribe(ctx1, channel)
	require.NoError(t, err)
	sub2, err := eventBus.Subscribe(ctx2, channel)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := &entities.ReconciliationEvent{
		ID:            "entry-redis-1",
		AppointmentID: "appt-redis-1",
		PatientID:     "patient-redis-1",
		Outcome:       entities.OutcomeConfirmedWithDocuments,
		OccurredAt:    time.Now().UTC(),
	}

	err = eventBus.Publish(context.Background(), channel, event)
	require.NoError(t, err)

	received1 := waitForReconciliationEvent(t, sub1)
	received2 := waitForReconciliationEvent(t, sub2)

	assert.Equal(t, event.ID, received1.ID)
	assert.Equal(t, event.ID, received2.ID)
	assert.Equal(t, event.Outcome, received2.Outcome)
}

func TestRedisEventBusPatientChannelIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := eventBus.Subscribe(ctx, providers.GetPatientChannel("patient-redis-2"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := &entities.ReconciliationEvent{
		ID:            "entry-redis-2",
		AppointmentID: "appt-redis-2",
		PatientID:     "patient-redis-2",
		Outcome:       entities.OutcomeCashDifferencePaid,
		OccurredAt:    time.Now().UTC(),
	}

	err = eventBus.Publish(context.Background(), providers.GetPatientChannel("patient-redis-2"), event)
	require.NoError(t, err)

	received := waitForReconciliationEvent(t, sub)
	assert.Equal(t, "appt-redis-2", received.AppointmentID)
	assert.Equal(t, entities.OutcomeCashDifferencePaid, received.Outcome)
}

func waitForReconciliationEvent(t *testing.T, ch <-chan *entities.ReconciliationEvent) *entities.ReconciliationEvent {
	t.Helper()

	select {
	case event := <-ch:
		require.NotNil(t, event)
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reconciliation event")
		return nil
	}
}
