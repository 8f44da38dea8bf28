package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/floreria/internal/domain"
)

// orderDTO is a request as the shop API returns it. Different endpoints use
// different names for the same fields, so every known variant is accepted.
type orderDTO struct {
	ID              int             `json:"id"`
	BouquetID       int             `json:"bouquet_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerAddress string          `json:"customer_address"`
	Address         string          `json:"address"`
	CustomerPhone   string          `json:"customer_phone"`
	Phone           string          `json:"phone"`
	Price           decimal.Decimal `json:"price"`
	RequestDate     string          `json:"request_date"`
	Date            string          `json:"date"`
	StatusID        *int            `json:"status_id"`
	Status          json.RawMessage `json:"status"`
	DeliveryManID   *int            `json:"delivery_man_id"`
}

func (d orderDTO) status() (domain.Status, bool, error) {
	if d.StatusID != nil {
		s, err := domain.StatusFromID(*d.StatusID)
		return s, true, err
	}

	raw := strings.TrimSpace(string(d.Status))
	if raw == "" || raw == "null" {
		return 0, false, nil
	}

	var label string
	if err := json.Unmarshal(d.Status, &label); err == nil {
		s, err := domain.ParseStatus(label)
		return s, true, err
	}

	var id int
	if err := json.Unmarshal(d.Status, &id); err == nil {
		s, err := domain.StatusFromID(id)
		return s, true, err
	}

	// {"id": 3, "name": "Elaborado"}
	var nested struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(d.Status, &nested); err == nil {
		if nested.ID != 0 {
			s, err := domain.StatusFromID(nested.ID)
			return s, true, err
		}
		s, err := domain.ParseStatus(nested.Name)
		return s, true, err
	}

	return 0, false, fmt.Errorf("unrecognised status value %s", raw)
}

func (d orderDTO) toDomain() (domain.Order, error) {
	status, ok, err := d.status()
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, fmt.Errorf("order %d: %w", d.ID, domain.ErrInvalidStatus)
	}

	return domain.Order{
		ID:              d.ID,
		BouquetID:       d.BouquetID,
		CustomerName:    d.CustomerName,
		CustomerAddress: firstNonEmpty(d.CustomerAddress, d.Address),
		CustomerPhone:   firstNonEmpty(d.CustomerPhone, d.Phone),
		Price:           d.Price,
		RequestDate:     firstNonEmpty(d.RequestDate, d.Date),
		Status:          status,
		DeliveryManID:   d.DeliveryManID,
	}, nil
}

// mergeInto overlays the fields the API sent back on top of base.
func (d orderDTO) mergeInto(base domain.Order) domain.Order {
	if d.ID != 0 {
		base.ID = d.ID
	}
	if d.CustomerName != "" {
		base.CustomerName = d.CustomerName
	}
	if v := firstNonEmpty(d.CustomerAddress, d.Address); v != "" {
		base.CustomerAddress = v
	}
	if v := firstNonEmpty(d.CustomerPhone, d.Phone); v != "" {
		base.CustomerPhone = v
	}
	if v := firstNonEmpty(d.RequestDate, d.Date); v != "" {
		base.RequestDate = v
	}
	if !d.Price.IsZero() {
		base.Price = d.Price
	}
	if d.DeliveryManID != nil {
		base.DeliveryManID = d.DeliveryManID
	}
	if s, ok, err := d.status(); err == nil && ok {
		base.Status = s
	}
	return base
}

type statusPatch struct {
	StatusID int `json:"status_id"`
}

type reservePatch struct {
	StatusID    int    `json:"status_id"`
	RequestDate string `json:"request_date"`
}

type cartRequestDTO struct {
	BouquetID     int    `json:"bouquet_id"`
	Quantity      int    `json:"quantity"`
	StatusID      int    `json:"status_id"`
	DeliveryManID int    `json:"delivery_man_id"`
	RequestDate   string `json:"request_date"`
}

type bouquetDTO struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	ImageURL     string          `json:"image_url"`
	IsPrecreated bool            `json:"is_precreated"`
}

func (d bouquetDTO) toDomain() domain.Bouquet {
	return domain.Bouquet{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Price:        d.Price,
		ImageURL:     firstNonEmpty(d.ImageURL, d.Image),
		IsPrecreated: d.IsPrecreated,
	}
}

type favoriteDTO struct {
	ID        int         `json:"id"`
	BouquetID int         `json:"bouquet_id"`
	Bouquet   *bouquetDTO `json:"bouquet"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type productDTO struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity *int            `json:"quantity"`
	Image    string          `json:"image"`
	ImageURL string          `json:"image_url"`
}

func (d productDTO) mergeInto(base domain.Product) domain.Product {
	if d.ID != 0 {
		base.ID = d.ID
	}
	if d.Name != "" {
		base.Name = d.Name
	}
	if !d.Price.IsZero() {
		base.Price = d.Price
	}
	if d.Quantity != nil {
		base.Quantity = *d.Quantity
	}
	if v := firstNonEmpty(d.ImageURL, d.Image); v != "" {
		base.ImageURL = v
	}
	return base
}
