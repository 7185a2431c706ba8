package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/harborview-stays/service-reservations/internal/platform/apperrors"
	"github.com/harborview-stays/service-reservations/internal/platform/kafka"
)

// ReservationConfirmer is the slice of the reservation service a payment
// capture needs. The consumer must not depend on the application package
// directly; the service imports this package for the payload types.
type ReservationConfirmer interface {
	ConfirmOnPaymentCaptured(ctx context.Context, reservationID, paymentID uuid.UUID) error
}

// PaymentEventConsumer listens to payment events and confirms the matching
// pending reservation when a capture succeeds.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  ReservationConfirmer
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service ReservationConfirmer,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. Blocks until the context is
// cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PaymentCaptured:
		return c.handlePaymentCaptured(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCaptured(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt PaymentCapturedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentCapturedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment captured event",
		zap.String("reservation_id", evt.ReservationID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	err := c.service.ConfirmOnPaymentCaptured(ctx, evt.ReservationID, evt.PaymentID)
	if err != nil {
		// A capture for a cancelled or unknown reservation will never
		// succeed on retry; log and move on.
		var validationErr *apperrors.ValidationError
		var notFoundErr *apperrors.NotFoundError
		if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) {
			c.logger.Warn("payment capture does not match a confirmable reservation",
				zap.String("reservation_id", evt.ReservationID.String()),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to confirm reservation after payment capture",
			zap.String("reservation_id", evt.ReservationID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
