package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/session"
)

// Confirmer asks the user to approve a status change before it is sent.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Answer returns a Confirmer that always replies ok.
func Answer(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return ok, nil })
}

// TransitionResult is the outcome of a transition attempt that was not refused.
// Applied is false when the user declined the confirmation.
type TransitionResult struct {
	Order   domain.Order
	Applied bool
	Prompt  string
}

// Интерфейсы Сервисов (Business Logic)
type LifecycleService interface {
	AvailableTransitions(current domain.Status, role domain.Role) []domain.Status
	RequestTransition(ctx context.Context, sess session.Session, order domain.Order, target domain.Status, confirm Confirmer) (TransitionResult, error)
}

type TrackingService interface {
	GetOrder(ctx context.Context, sess session.Session, id int) (*OrderView, error)
	GetOrderHistory(ctx context.Context, orderID int) ([]*domain.StatusLog, error)
}

type ReservationService interface {
	Catalog(ctx context.Context, sess session.Session) ([]domain.Bouquet, error)
	Favorites(ctx context.Context, sess session.Session) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, sess session.Session, bouquetID int) error
	AddToCart(ctx context.Context, sess session.Session, bouquetID, quantity int) (*domain.Order, error)
	Reserve(ctx context.Context, sess session.Session, requestID int, requestDate time.Time) error
	Cancel(ctx context.Context, sess session.Session, requestID int) error
	Reservations(ctx context.Context, sess session.Session) ([]domain.Order, error)
}

type InventoryService interface {
	CreateProduct(ctx context.Context, sess session.Session, p domain.NewProduct) (*domain.Product, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// Ответы Tracking Service
type OrderView struct {
	Order                domain.Order
	AvailableTransitions []domain.Status
}

type LoginResult struct {
	Session session.Session
	Landing string
}
