package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
)

const defaultReconnectDelay = 5 * time.Second

type consumer struct {
	conn           Connection
	logger         logger.Logger
	queue          string
	reconnectDelay time.Duration
}

// NewConsumer subscribes to StatusExchange. An empty queue name gives every
// subscriber its own exclusive queue; a named queue is durable and shared.
func NewConsumer(conn Connection, logger logger.Logger, queue string) interfaces.MessageConsumer {
	return &consumer{
		conn:           conn,
		logger:         logger,
		queue:          queue,
		reconnectDelay: defaultReconnectDelay,
	}
}

func (c *consumer) ConsumeNotifications(ctx context.Context, handler interfaces.NotificationHandler) error {
	for {
		err := c.consume(ctx, handler)

		// Если контекст отменен - выходим
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err == nil {
			return nil
		}

		c.logger.Error("rabbitmq_disconnected",
			fmt.Sprintf("Notifications consumer disconnected, reconnecting in %s", c.reconnectDelay),
			"", nil, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *consumer) consume(ctx context.Context, handler interfaces.NotificationHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	// Отслеживаем закрытие канала
	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(StatusExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	durable := c.queue != ""
	q, err := ch.QueueDeclare(c.queue, durable, !durable, !durable, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", StatusExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("rabbitmq_subscribed", fmt.Sprintf("Listening on %s", StatusExchange), "",
		map[string]interface{}{"queue": q.Name})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}

			// Ошибки обработки уведомлений не останавливают подписку
			if err := handler(ctx, msg.Body); err != nil {
				c.logger.Debug("notification_skipped", "Notification handler failed", "",
					map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
