package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
)

type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger, out io.Writer) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    out,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}
	if msg.OrderID <= 0 {
		err := fmt.Errorf("notification without order id")
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received status update for order %d", msg.OrderID),
		"", map[string]interface{}{
			"order_id":   msg.OrderID,
			"new_status": msg.NewLabel,
		})

	oldLabel, newLabel := msg.OldLabel, msg.NewLabel
	if oldLabel == "" {
		oldLabel = msg.OldStatus.String()
	}
	if newLabel == "" {
		newLabel = msg.NewStatus.String()
	}

	_, err := fmt.Fprintf(h.out, "[%s] Order #%d: status changed from '%s' to '%s' by %s\n",
		msg.Timestamp.Local().Format(time.DateTime), msg.OrderID, oldLabel, newLabel, msg.ChangedBy)
	return err
}
