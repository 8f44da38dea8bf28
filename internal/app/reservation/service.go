package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/session"
)

// Service is the customer flow around the lifecycle: cart, reservation and cancellation.
type Service struct {
	catalog   interfaces.CatalogRepositoryFactory
	orders    interfaces.OrderRepositoryFactory
	statusLog interfaces.StatusLogRepository
	publisher interfaces.MessagePublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewService(
	catalog interfaces.CatalogRepositoryFactory,
	orders interfaces.OrderRepositoryFactory,
	statusLog interfaces.StatusLogRepository,
	publisher interfaces.MessagePublisher,
	logger logger.Logger,
) *Service {
	return &Service{
		catalog:   catalog,
		orders:    orders,
		statusLog: statusLog,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Catalog(ctx context.Context, sess session.Session) ([]domain.Bouquet, error) {
	return s.catalog(sess).ListBouquets(ctx, true)
}

func (s *Service) Favorites(ctx context.Context, sess session.Session) ([]domain.Favorite, error) {
	if !sess.Authenticated() {
		return nil, session.ErrMissingToken
	}
	return s.catalog(sess).ListFavorites(ctx)
}

func (s *Service) AddFavorite(ctx context.Context, sess session.Session, bouquetID int) error {
	if !sess.Authenticated() {
		return session.ErrMissingToken
	}
	if bouquetID <= 0 {
		return fmt.Errorf("%w: bouquet id is required", domain.ErrInvalidRequest)
	}
	return s.catalog(sess).AddFavorite(ctx, bouquetID)
}

func (s *Service) AddToCart(ctx context.Context, sess session.Session, bouquetID, quantity int) (*domain.Order, error) {
	if err := requireCustomer(sess); err != nil {
		return nil, err
	}

	req := domain.CartRequest{BouquetID: bouquetID, Quantity: quantity, RequestDate: s.now().UTC()}
	if err := req.Validate(); err != nil {
		s.logger.Error("validation_failed", "Cart request validation failed", "", nil, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	order, err := s.catalog(sess).AddToCart(ctx, req)
	if err != nil {
		s.logger.Error("add_to_cart_failed", "Failed to add bouquet to cart", "", map[string]interface{}{"bouquet_id": bouquetID}, err)
		return nil, err
	}

	s.logger.Debug("cart_request_created", fmt.Sprintf("Request %d added to cart", order.ID), "",
		map[string]interface{}{"order_id": order.ID, "bouquet_id": bouquetID})
	return order, nil
}

// Reserve moves a cart request to Apartado for delivery on requestDate.
func (s *Service) Reserve(ctx context.Context, sess session.Session, requestID int, requestDate time.Time) error {
	if requestDate.IsZero() {
		return fmt.Errorf("%w: a delivery date is required", domain.ErrInvalidRequest)
	}
	order, err := s.cartRequest(ctx, sess, requestID)
	if err != nil {
		return err
	}

	if err := s.catalog(sess).Reserve(ctx, requestID, requestDate); err != nil {
		s.logger.Error("reserve_failed", "Failed to reserve request", "", map[string]interface{}{"order_id": requestID}, err)
		return err
	}

	s.logger.Info("request_reserved", fmt.Sprintf("Request %d reserved", requestID), "",
		map[string]interface{}{"order_id": requestID, "request_date": requestDate.Format(time.DateOnly)})
	s.recordChange(ctx, sess, order.ID, order.Status, domain.StatusReserved)
	return nil
}

// Cancel deletes a request that is still in the cart.
func (s *Service) Cancel(ctx context.Context, sess session.Session, requestID int) error {
	if _, err := s.cartRequest(ctx, sess, requestID); err != nil {
		return err
	}

	if err := s.catalog(sess).CancelRequest(ctx, requestID); err != nil {
		s.logger.Error("cancel_failed", "Failed to cancel request", "", map[string]interface{}{"order_id": requestID}, err)
		return err
	}

	s.logger.Info("request_cancelled", fmt.Sprintf("Request %d cancelled", requestID), "",
		map[string]interface{}{"order_id": requestID})
	return nil
}

func (s *Service) Reservations(ctx context.Context, sess session.Session) ([]domain.Order, error) {
	if !sess.Authenticated() {
		return nil, session.ErrMissingToken
	}
	return s.catalog(sess).ListRequestsByStatus(ctx, domain.StatusReserved)
}

func (s *Service) cartRequest(ctx context.Context, sess session.Session, requestID int) (*domain.Order, error) {
	if err := requireCustomer(sess); err != nil {
		return nil, err
	}

	order, err := s.orders(sess).FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusCart {
		return nil, fmt.Errorf("request %d is %s: %w", requestID, order.Status, domain.ErrNotInCart)
	}
	return order, nil
}

func (s *Service) recordChange(ctx context.Context, sess session.Session, orderID int, from, to domain.Status) {
	ctx = context.WithoutCancel(ctx)
	now := s.now()

	if s.statusLog != nil {
		entry := &domain.StatusLog{
			OrderID:    orderID,
			FromStatus: from,
			ToStatus:   to,
			Role:       sess.Role,
			ChangedBy:  sess.Actor(),
			ChangedAt:  now,
		}
		if err := s.statusLog.Append(ctx, entry); err != nil {
			s.logger.Error("status_log_failed", "Failed to record status change", "", map[string]interface{}{"order_id": orderID}, err)
		}
	}

	// Не блокируем ответ, если публикация не удалась
	if s.publisher != nil {
		msg := interfaces.StatusUpdateMessage{
			OrderID:   orderID,
			OldStatus: from,
			NewStatus: to,
			OldLabel:  from.String(),
			NewLabel:  to.String(),
			Role:      sess.Role.String(),
			ChangedBy: sess.Actor(),
			Timestamp: now,
		}
		if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
			s.logger.Error("rabbitmq_publish_failed", "Failed to publish status update", "", map[string]interface{}{"order_id": orderID}, err)
		}
	}
}

func requireCustomer(sess session.Session) error {
	if !sess.Authenticated() {
		return session.ErrMissingToken
	}
	if sess.Role != domain.RoleCustomer {
		return domain.ErrUnauthorized
	}
	return nil
}
