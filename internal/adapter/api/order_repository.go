package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
)

// status patch endpoint per role
var statusPaths = map[domain.Role]string{
	domain.RoleAdmin:    "/requests/%d/status/admin",
	domain.RoleDelivery: "/requests/%d/status/delivery",
}

type orderRepository struct {
	client *Client
}

func NewOrderRepository(client *Client) interfaces.OrderRepository {
	return &orderRepository{client: client}
}

func (r *orderRepository) FindByID(ctx context.Context, id int) (*domain.Order, error) {
	var dto orderDTO
	_, err := r.client.do(ctx, "find_order", http.MethodGet, fmt.Sprintf("/requests/%d", id), nil, &dto)
	if err != nil {
		if repoErr, ok := asRepositoryError(err); ok && repoErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("order %d: %w", id, domain.ErrOrderNotFound)
		}
		if _, ok := asRepositoryError(err); ok {
			return nil, err
		}
		return nil, unreadableOrder(id, err)
	}
	if dto.ID == 0 {
		dto.ID = id
	}

	order, err := dto.toDomain()
	if err != nil {
		return nil, unreadableOrder(id, err)
	}
	return &order, nil
}

// unreadableOrder blames the shop API for a body the desk cannot decode.
func unreadableOrder(id int, err error) error {
	return &domain.RepositoryError{Message: fmt.Sprintf("unreadable order %d: %v", id, err), Err: err}
}

// UpdateStatus sends the role's status patch. When the API answers without a
// usable representation the caller's copy is returned with the new status.
func (r *orderRepository) UpdateStatus(ctx context.Context, order domain.Order, role domain.Role, status domain.Status) (*domain.Order, error) {
	pathFmt, ok := statusPaths[role]
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	var dto orderDTO
	_, err := r.client.do(ctx, "update_status", http.MethodPatch, fmt.Sprintf(pathFmt, order.ID),
		statusPatch{StatusID: status.ID()}, &dto)
	if err != nil {
		if _, ok := asRepositoryError(err); ok {
			return nil, err
		}
		// 2xx with a body we could not read: the change went through
		dto = orderDTO{}
	}

	updated := dto.mergeInto(order)
	updated.Status = status
	return &updated, nil
}

func asRepositoryError(err error) (*domain.RepositoryError, bool) {
	var repoErr *domain.RepositoryError
	ok := errors.As(err, &repoErr)
	return repoErr, ok
}
