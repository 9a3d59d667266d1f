package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hadfi53/rakb-sub004/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PaymentNotifier receives captured-payment events.
type PaymentNotifier interface {
	HandlePaymentCaptured(ctx context.Context, evt PaymentCapturedEvent) error
}

// PaymentConsumer turns payment events into user notifications.
type PaymentConsumer struct {
	consumer *kafka.Consumer
	notifier PaymentNotifier
	logger   *zap.Logger
}

// NewPaymentConsumer creates a consumer on the payment events topic.
func NewPaymentConsumer(brokers []string, groupID string, notifier PaymentNotifier, logger *zap.Logger) *PaymentConsumer {
	return &PaymentConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		notifier: notifier,
		logger:   logger,
	}
}

// Run consumes until the context is cancelled.
func (c *PaymentConsumer) Run(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handle)
}

// Close closes the underlying consumer.
func (c *PaymentConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentConsumer) handle(ctx context.Context, msg kafkago.Message) error {
	var envelope kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		c.logger.Error("dropping malformed payment event", zap.Error(err))
		return nil
	}

	if envelope.Type != PaymentCaptured {
		c.logger.Debug("ignoring unknown payment event type",
			zap.String("type", envelope.Type))
		return nil
	}

	var evt PaymentCapturedEvent
	if err := envelope.ParseData(&evt); err != nil {
		c.logger.Error("dropping undecodable payment.captured event", zap.Error(err))
		return nil
	}
	if err := c.notifier.HandlePaymentCaptured(ctx, evt); err != nil {
		return fmt.Errorf("failed to handle payment.captured: %w", err)
	}
	return nil
}
