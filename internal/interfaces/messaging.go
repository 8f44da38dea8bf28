package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/floreria/internal/domain"
)

// Сообщения RabbitMQ
type StatusUpdateMessage struct {
	OrderID   int           `json:"order_id"`
	OldStatus domain.Status `json:"old_status_id"`
	NewStatus domain.Status `json:"new_status_id"`
	OldLabel  string        `json:"old_status"`
	NewLabel  string        `json:"new_status"`
	Role      string        `json:"role"`
	ChangedBy string        `json:"changed_by"`
	Timestamp time.Time     `json:"timestamp"`
}

// Интерфейсы Messaging (Adapter/RabbitMQ)
type MessagePublisher interface {
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
}

type MessageConsumer interface {
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
}

type NotificationHandler func(ctx context.Context, body []byte) error
