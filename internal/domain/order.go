package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer request as returned by the shop API.
// The desk only holds a transient copy; the API owns it.
type Order struct {
	ID              int
	BouquetID       int
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
	Price           decimal.Decimal
	RequestDate     string
	Status          Status
	DeliveryManID   *int
}

// Validate checks the fields the lifecycle depends on
func (o Order) Validate() error {
	if o.ID <= 0 {
		return errors.New("order id must be positive")
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// WithStatus returns a copy of the order carrying s.
func (o Order) WithStatus(s Status) Order {
	o.Status = s
	return o
}

// Bouquet is a catalog product.
type Bouquet struct {
	ID           int
	Name         string
	Description  string
	Price        decimal.Decimal
	ImageURL     string
	IsPrecreated bool
}

// Favorite links a customer to a bouquet.
type Favorite struct {
	ID        int
	BouquetID int
	Bouquet   *Bouquet
}

// CartRequest is the body sent when a customer puts a bouquet into the cart.
type CartRequest struct {
	BouquetID     int
	Quantity      int
	DeliveryManID int
	RequestDate   time.Time
}

func (c CartRequest) Validate() error {
	if c.BouquetID <= 0 {
		return errors.New("bouquet id is required")
	}
	if c.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	return nil
}
