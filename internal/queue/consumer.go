package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mbarroso/escala-engine/internal/observability"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	defaultMaxAttempts    = 3
	defaultHandlerTimeout = 600 * time.Second
)

// RabbitMQConsumer consumes batch jobs. Each delivery runs the handler under
// a bounded timeout; a failed attempt is republished with an incremented
// attempt header until the attempt cap, then dead-lettered.
type RabbitMQConsumer struct {
	client         *RabbitMQ
	prefetch       int
	maxAttempts    int
	handlerTimeout time.Duration
	logger         *zap.Logger
}

func NewRabbitMQConsumer(
	client *RabbitMQ,
	prefetch int,
	maxAttempts int,
	handlerTimeout time.Duration,
	logger *zap.Logger,
) *RabbitMQConsumer {
	if prefetch < 1 {
		prefetch = 1
	}
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	if handlerTimeout <= 0 {
		handlerTimeout = defaultHandlerTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RabbitMQConsumer{
		client:         client,
		prefetch:       prefetch,
		maxAttempts:    maxAttempts,
		handlerTimeout: handlerTimeout,
		logger:         logger,
	}
}

func (c *RabbitMQConsumer) Consume(ctx context.Context, queue string, handler MessageHandler) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("consumer is not initialized")
	}
	if queue == "" {
		return fmt.Errorf("queue name is required")
	}
	if handler == nil {
		return fmt.Errorf("message handler is required")
	}

	backoff := reconnectBackoff
	for {
		err := c.consumeOnce(ctx, queue, handler)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			backoff = reconnectBackoff
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (c *RabbitMQConsumer) consumeOnce(ctx context.Context, queue string, handler MessageHandler) error {
	ch, err := c.client.channel(ctx)
	if err != nil {
		return err
	}
	defer ch.Close() //nolint:errcheck // best-effort channel close

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue %q: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			if err := c.handleDelivery(ctx, ch, queue, d, handler); err != nil {
				return err
			}
		}
	}
}

func (c *RabbitMQConsumer) handleDelivery(
	ctx context.Context,
	ch *amqp.Channel,
	queue string,
	d amqp.Delivery,
	handler MessageHandler,
) error {
	var msg BatchMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Warn("rejecting message: invalid JSON",
			zap.Error(err),
			zap.String("routingKey", d.RoutingKey),
		)
		if rejectErr := d.Reject(false); rejectErr != nil {
			return fmt.Errorf("failed to reject invalid message: %w", rejectErr)
		}
		return nil
	}

	if err := msg.Validate(); err != nil {
		c.logger.Warn("rejecting message: validation failed",
			zap.Error(err),
			zap.String("batchId", msg.BatchID),
		)
		if rejectErr := d.Reject(false); rejectErr != nil {
			return fmt.Errorf("failed to reject invalid payload: %w", rejectErr)
		}
		return nil
	}

	attempt := attemptFromHeaders(d.Headers)

	handlerCtx, cancel := context.WithTimeout(observability.WithCorrelationID(ctx, d.MessageId), c.handlerTimeout)
	err := handler(handlerCtx, msg)
	cancel()

	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			return fmt.Errorf("failed to ack delivery: %w", ackErr)
		}
		return nil
	}

	if attempt >= c.maxAttempts {
		c.logger.Error("batch job exhausted attempts, dead-lettering",
			zap.String("batchId", msg.BatchID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if rejectErr := d.Reject(false); rejectErr != nil {
			return fmt.Errorf("failed to dead-letter delivery: %w", rejectErr)
		}
		return nil
	}

	c.logger.Warn("batch job attempt failed, republishing",
		zap.String("batchId", msg.BatchID),
		zap.Int("attempt", attempt),
		zap.Error(err),
	)

	if republishErr := c.republish(ctx, ch, queue, d, attempt+1); republishErr != nil {
		// Fall back to a broker redelivery; the attempt header stays put
		// but the job is not lost.
		if nackErr := d.Nack(false, true); nackErr != nil {
			return fmt.Errorf("republish failed and nack failed: %w", nackErr)
		}
		return nil
	}

	if ackErr := d.Ack(false); ackErr != nil {
		return fmt.Errorf("failed to ack delivery after republish: %w", ackErr)
	}

	return nil
}

func (c *RabbitMQConsumer) republish(
	ctx context.Context,
	ch *amqp.Channel,
	queue string,
	d amqp.Delivery,
	nextAttempt int,
) error {
	headers := amqp.Table{}
	for key, value := range d.Headers {
		headers[key] = value
	}
	headers[attemptHeader] = int32(nextAttempt)

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    d.MessageId,
		Headers:      headers,
		Body:         d.Body,
	}

	return ch.PublishWithContext(ctx, "", queue, false, false, publishing)
}

func attemptFromHeaders(headers amqp.Table) int {
	if headers == nil {
		return 1
	}

	switch v := headers[attemptHeader].(type) {
	case int32:
		if v >= 1 {
			return int(v)
		}
	case int64:
		if v >= 1 {
			return int(v)
		}
	case int:
		if v >= 1 {
			return v
		}
	}

	return 1
}

func (c *RabbitMQConsumer) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
