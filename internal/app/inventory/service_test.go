package inventory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/session"
)

type fakeCatalog struct {
	interfaces.CatalogRepository
	created []domain.NewProduct
	err     error
}

func (c *fakeCatalog) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.created = append(c.created, p)
	return &domain.Product{ID: 50, Kind: p.Kind, Name: p.Name, Price: p.Price}, nil
}

func newService(c *fakeCatalog) *Service {
	return NewService(func(session.Session) interfaces.CatalogRepository { return c }, logger.Nop())
}

var admin = session.Session{Token: "t", Role: domain.RoleAdmin, Subject: "admin@floreria.mx"}

func rosas() domain.NewProduct {
	return domain.NewProduct{
		Kind:     domain.ProductBouquet,
		Name:     "Ramo de Rosas",
		TypeName: "Clasico",
		Price:    decimal.RequireFromString("350"),
		Quantity: 5,
		ImageURL: "https://cdn.floreria.mx/rosas.jpg",
	}
}

func TestCreateProduct(t *testing.T) {
	c := &fakeCatalog{}

	product, err := newService(c).CreateProduct(context.Background(), admin, rosas())
	require.NoError(t, err)

	assert.Equal(t, 50, product.ID)
	require.Len(t, c.created, 1)
	assert.Equal(t, "Ramo de Rosas", c.created[0].Name)
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	c := &fakeCatalog{}
	svc := newService(c)

	_, err := svc.CreateProduct(context.Background(), session.Session{Token: "t", Role: domain.RoleDelivery}, rosas())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.CreateProduct(context.Background(), session.Anonymous(), rosas())
	assert.ErrorIs(t, err, session.ErrMissingToken)

	assert.Empty(t, c.created)
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *domain.NewProduct)
	}{
		{"digits in name", func(p *domain.NewProduct) { p.Name = "Rosas 12" }},
		{"symbols in type", func(p *domain.NewProduct) { p.TypeName = "Clasico!" }},
		{"empty name", func(p *domain.NewProduct) { p.Name = "  " }},
		{"no image", func(p *domain.NewProduct) { p.ImageURL = "" }},
		{"zero price", func(p *domain.NewProduct) { p.Price = decimal.Zero }},
		{"negative quantity", func(p *domain.NewProduct) { p.Quantity = -1 }},
		{"unknown kind", func(p *domain.NewProduct) { p.Kind = 0 }},
		{"flower color", func(p *domain.NewProduct) { p.Kind = domain.ProductFlower; p.Color = "r0jo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCatalog{}
			p := rosas()
			tt.modify(&p)

			_, err := newService(c).CreateProduct(context.Background(), admin, p)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
			assert.Empty(t, c.created)
		})
	}
}

func TestCreateProductAcceptsAccentsAndUploadedImage(t *testing.T) {
	c := &fakeCatalog{}
	p := rosas()
	p.Kind = domain.ProductFlower
	p.Name = "Tulipán"
	p.Color = "Amarillo"
	p.ImageURL = ""
	p.Image = []byte{0xff, 0xd8, 0xff}

	_, err := newService(c).CreateProduct(context.Background(), admin, p)
	require.NoError(t, err)
}

func TestCreateProductRepositoryError(t *testing.T) {
	c := &fakeCatalog{err: &domain.RepositoryError{Code: 500, Message: "upload failed"}}

	_, err := newService(c).CreateProduct(context.Background(), admin, rosas())

	var repoErr *domain.RepositoryError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, 500, repoErr.Code)
}
