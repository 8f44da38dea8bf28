package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
)

type catalogRepository struct {
	client *Client
}

func NewCatalogRepository(client *Client) interfaces.CatalogRepository {
	return &catalogRepository{client: client}
}

func (r *catalogRepository) ListBouquets(ctx context.Context, precreatedOnly bool) ([]domain.Bouquet, error) {
	path := "/bouquets"
	if precreatedOnly {
		path += "?is_precreated=true"
	}

	var dtos []bouquetDTO
	if _, err := r.client.do(ctx, "list_bouquets", http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}

	bouquets := make([]domain.Bouquet, 0, len(dtos))
	for _, d := range dtos {
		bouquets = append(bouquets, d.toDomain())
	}
	return bouquets, nil
}

func (r *catalogRepository) ListFavorites(ctx context.Context) ([]domain.Favorite, error) {
	var dtos []favoriteDTO
	if _, err := r.client.do(ctx, "list_favorites", http.MethodGet, "/favorites", nil, &dtos); err != nil {
		return nil, err
	}

	favorites := make([]domain.Favorite, 0, len(dtos))
	for _, d := range dtos {
		fav := domain.Favorite{ID: d.ID, BouquetID: d.BouquetID}
		if d.Bouquet != nil {
			b := d.Bouquet.toDomain()
			fav.Bouquet = &b
			if fav.BouquetID == 0 {
				fav.BouquetID = b.ID
			}
		}
		favorites = append(favorites, fav)
	}
	return favorites, nil
}

func (r *catalogRepository) AddFavorite(ctx context.Context, bouquetID int) error {
	body := map[string]int{"bouquetId": bouquetID}
	_, err := r.client.do(ctx, "add_favorite", http.MethodPost, "/favorites", body, nil)
	return err
}

// AddToCart creates a pre-reservation request (status Carrito).
func (r *catalogRepository) AddToCart(ctx context.Context, req domain.CartRequest) (*domain.Order, error) {
	if req.RequestDate.IsZero() {
		req.RequestDate = time.Now().UTC()
	}
	body := cartRequestDTO{
		BouquetID:     req.BouquetID,
		Quantity:      req.Quantity,
		StatusID:      domain.StatusCart.ID(),
		DeliveryManID: req.DeliveryManID,
		RequestDate:   req.RequestDate.Format(time.RFC3339),
	}

	var dto orderDTO
	if _, err := r.client.do(ctx, "add_to_cart", http.MethodPost, "/requests/addcarrito", body, &dto); err != nil {
		if _, ok := asRepositoryError(err); ok {
			return nil, err
		}
	}

	order := dto.mergeInto(domain.Order{
		BouquetID:     req.BouquetID,
		RequestDate:   body.RequestDate,
		Status:        domain.StatusCart,
		DeliveryManID: &body.DeliveryManID,
	})
	return &order, nil
}

// Reserve moves a cart request to Apartado with the chosen delivery date.
func (r *catalogRepository) Reserve(ctx context.Context, requestID int, requestDate time.Time) error {
	body := reservePatch{
		StatusID:    domain.StatusReserved.ID(),
		RequestDate: requestDate.UTC().Format(time.RFC3339),
	}
	_, err := r.client.do(ctx, "reserve", http.MethodPatch, fmt.Sprintf("/requests/%d/status", requestID), body, nil)
	return err
}

func (r *catalogRepository) CancelRequest(ctx context.Context, requestID int) error {
	_, err := r.client.do(ctx, "cancel_request", http.MethodDelete, fmt.Sprintf("/requests/%d", requestID), nil, nil)
	return err
}

// ListRequestsByStatus filters client side as well; the endpoint is known to
// return neighbouring statuses.
func (r *catalogRepository) ListRequestsByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	var dtos []orderDTO
	path := fmt.Sprintf("/requests/status/%d", status.ID())
	if _, err := r.client.do(ctx, "list_requests", http.MethodGet, path, nil, &dtos); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(dtos))
	for _, d := range dtos {
		order, err := d.toDomain()
		if err != nil || order.Status != status {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}
