package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hadfi53/rakb-sub004/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubNotifier struct {
	requested []BookingRequestedEvent
	changed   []BookingStatusChangedEvent
	err       error
}

func (n *stubNotifier) HandleBookingRequested(_ context.Context, evt BookingRequestedEvent) error {
	n.requested = append(n.requested, evt)
	return n.err
}

func (n *stubNotifier) HandleStatusChanged(_ context.Context, evt BookingStatusChangedEvent) error {
	n.changed = append(n.changed, evt)
	return n.err
}

func envelopeMessage(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("rakb-rental", eventType, data)
	require.NoError(t, err)
	value, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Value: value}
}

func TestBookingConsumerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches status change to the notifier", func(t *testing.T) {
		notifier := &stubNotifier{}
		c := &BookingConsumer{notifier: notifier, logger: zap.NewNop()}

		evt := BookingStatusChangedEvent{
			BookingID:  uuid.New(),
			OldStatus:  "pending",
			NewStatus:  "confirmed",
			OccurredAt: time.Now().UTC(),
		}
		require.NoError(t, c.handle(ctx, envelopeMessage(t, BookingStatusChanged, evt)))

		require.Len(t, notifier.changed, 1)
		assert.Equal(t, evt.BookingID, notifier.changed[0].BookingID)
		assert.Equal(t, "confirmed", notifier.changed[0].NewStatus)
	})

	t.Run("malformed payload is committed, not retried", func(t *testing.T) {
		notifier := &stubNotifier{}
		c := &BookingConsumer{notifier: notifier, logger: zap.NewNop()}

		err := c.handle(ctx, kafkago.Message{Value: []byte("not json")})
		assert.NoError(t, err, "a nil error commits the offset")
		assert.Empty(t, notifier.requested)
		assert.Empty(t, notifier.changed)
	})

	t.Run("unknown event type is ignored", func(t *testing.T) {
		notifier := &stubNotifier{}
		c := &BookingConsumer{notifier: notifier, logger: zap.NewNop()}

		err := c.handle(ctx, envelopeMessage(t, "booking.archived", struct{}{}))
		assert.NoError(t, err)
		assert.Empty(t, notifier.changed)
	})

	t.Run("notifier failure leaves the message uncommitted", func(t *testing.T) {
		notifier := &stubNotifier{err: errors.New("db down")}
		c := &BookingConsumer{notifier: notifier, logger: zap.NewNop()}

		err := c.handle(ctx, envelopeMessage(t, BookingRequested, BookingRequestedEvent{BookingID: uuid.New()}))
		require.Error(t, err)
	})
}
