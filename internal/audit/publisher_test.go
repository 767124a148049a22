package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePublisher_Emit(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewStorePublisher(store)
	ctx := context.Background()

	t.Run("stamps missing timestamps", func(t *testing.T) {
		err := pub.Emit(ctx, Event{Action: ActionCertificateIssued, SubjectID: "42", CertificateID: "VAC-00042-ABCDE"})
		require.NoError(t, err)

		events, err := store.ListBySubject(ctx, "42")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.False(t, events[0].Timestamp.IsZero())
	})

	t.Run("preserves explicit timestamps", func(t *testing.T) {
		ts := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
		err := pub.Emit(ctx, Event{Timestamp: ts, Action: ActionCertificateRejected, SubjectID: "43", Reason: "insufficient_doses"})
		require.NoError(t, err)

		events, err := store.ListBySubject(ctx, "43")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, ts, events[0].Timestamp)
	})
}

func TestWorker_PersistsUntilCancelled(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event, 2)
	worker := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- Event{Action: ActionCertificateIssued, SubjectID: "42"}
	inbox <- Event{Action: ActionCertificateIssued, SubjectID: "42"}

	require.Eventually(t, func() bool {
		events, err := store.ListBySubject(context.Background(), "42")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
