package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hadfi53/rakb-sub004/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BookingNotifier is implemented by the notification service; the consumer
// depends on it rather than the concrete type to avoid an import cycle.
type BookingNotifier interface {
	HandleBookingRequested(ctx context.Context, evt BookingRequestedEvent) error
	HandleStatusChanged(ctx context.Context, evt BookingStatusChangedEvent) error
}

// BookingConsumer turns booking lifecycle events into user notifications.
type BookingConsumer struct {
	consumer *kafka.Consumer
	notifier BookingNotifier
	logger   *zap.Logger
}

// NewBookingConsumer creates a consumer on the booking events topic.
func NewBookingConsumer(brokers []string, groupID string, notifier BookingNotifier, logger *zap.Logger) *BookingConsumer {
	return &BookingConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger),
		notifier: notifier,
		logger:   logger,
	}
}

// Run consumes until the context is cancelled.
func (c *BookingConsumer) Run(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handle)
}

// Close closes the underlying consumer.
func (c *BookingConsumer) Close() error {
	return c.consumer.Close()
}

func (c *BookingConsumer) handle(ctx context.Context, msg kafkago.Message) error {
	var envelope kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		// Malformed envelope: log and commit, redelivery cannot help.
		c.logger.Error("dropping malformed booking event", zap.Error(err))
		return nil
	}

	switch envelope.Type {
	case BookingRequested:
		var evt BookingRequestedEvent
		if err := envelope.ParseData(&evt); err != nil {
			c.logger.Error("dropping undecodable booking.requested event", zap.Error(err))
			return nil
		}
		if err := c.notifier.HandleBookingRequested(ctx, evt); err != nil {
			return fmt.Errorf("failed to handle booking.requested: %w", err)
		}

	case BookingStatusChanged:
		var evt BookingStatusChangedEvent
		if err := envelope.ParseData(&evt); err != nil {
			c.logger.Error("dropping undecodable booking.status_changed event", zap.Error(err))
			return nil
		}
		if err := c.notifier.HandleStatusChanged(ctx, evt); err != nil {
			return fmt.Errorf("failed to handle booking.status_changed: %w", err)
		}

	default:
		c.logger.Debug("ignoring unknown booking event type",
			zap.String("type", envelope.Type))
	}
	return nil
}
