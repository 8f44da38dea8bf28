package tracking

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/session"
)

type Service struct {
	orders    interfaces.OrderRepositoryFactory
	statusLog interfaces.StatusLogRepository
	logger    logger.Logger
}

// NewService builds the read side of the desk. statusLog may be nil when no
// database is configured; history is then empty.
func NewService(orders interfaces.OrderRepositoryFactory, statusLog interfaces.StatusLogRepository, logger logger.Logger) *Service {
	return &Service{
		orders:    orders,
		statusLog: statusLog,
		logger:    logger,
	}
}

// GetOrder fetches an order and the transitions the caller's role may apply to it.
func (s *Service) GetOrder(ctx context.Context, sess session.Session, id int) (*interfaces.OrderView, error) {
	order, err := s.orders(sess).FindByID(ctx, id)
	if err != nil {
		s.logger.Debug("order_lookup_failed", fmt.Sprintf("Order %d could not be loaded", id), "",
			map[string]interface{}{"order_id": id, "error": err.Error()})
		return nil, err
	}

	return &interfaces.OrderView{
		Order:                *order,
		AvailableTransitions: domain.AvailableTransitions(order.Status, sess.Role),
	}, nil
}

func (s *Service) GetOrderHistory(ctx context.Context, orderID int) ([]*domain.StatusLog, error) {
	if s.statusLog == nil {
		return []*domain.StatusLog{}, nil
	}
	logs, err := s.statusLog.History(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*domain.StatusLog{}
	}
	return logs, nil
}
