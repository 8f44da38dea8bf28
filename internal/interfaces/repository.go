package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/session"
)

// OrderRepository is the shop API seen from the order desk.
type OrderRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Order, error)
	UpdateStatus(ctx context.Context, order domain.Order, role domain.Role, status domain.Status) (*domain.Order, error)
}

// OrderRepositoryFactory binds a repository to a caller session.
type OrderRepositoryFactory func(sess session.Session) OrderRepository

// CatalogRepository covers the catalog, customer and inventory endpoints of the shop API.
type CatalogRepository interface {
	ListBouquets(ctx context.Context, precreatedOnly bool) ([]domain.Bouquet, error)
	ListFavorites(ctx context.Context) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, bouquetID int) error
	AddToCart(ctx context.Context, req domain.CartRequest) (*domain.Order, error)
	Reserve(ctx context.Context, requestID int, requestDate time.Time) error
	CancelRequest(ctx context.Context, requestID int) error
	ListRequestsByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error)
}

// CatalogRepositoryFactory binds a catalog client to a caller session.
type CatalogRepositoryFactory func(sess session.Session) CatalogRepository

// StatusLogRepository stores applied transitions locally (Postgres).
type StatusLogRepository interface {
	Append(ctx context.Context, entry *domain.StatusLog) error
	History(ctx context.Context, orderID int) ([]*domain.StatusLog, error)
}
