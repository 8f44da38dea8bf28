package inventory

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/session"
)

// Service backs the admin inventory screen.
type Service struct {
	catalog interfaces.CatalogRepositoryFactory
	logger  logger.Logger
}

func NewService(catalog interfaces.CatalogRepositoryFactory, logger logger.Logger) *Service {
	return &Service{catalog: catalog, logger: logger}
}

// CreateProduct adds a bouquet or a flower. Only admins may do it.
func (s *Service) CreateProduct(ctx context.Context, sess session.Session, p domain.NewProduct) (*domain.Product, error) {
	if !sess.Authenticated() {
		return nil, session.ErrMissingToken
	}
	if sess.Role != domain.RoleAdmin {
		return nil, domain.ErrUnauthorized
	}

	if err := p.Validate(); err != nil {
		s.logger.Debug("validation_failed", err.Error(), "", map[string]interface{}{"kind": p.Kind.String()})
		return nil, err
	}

	product, err := s.catalog(sess).CreateProduct(ctx, p)
	if err != nil {
		s.logger.Error("create_product_failed", "Failed to create product", "", map[string]interface{}{
			"kind": p.Kind.String(),
			"name": p.Name,
		}, err)
		return nil, err
	}

	s.logger.Info("product_created", fmt.Sprintf("%s %q added to inventory", p.Kind, product.Name), "", map[string]interface{}{
		"kind":       p.Kind.String(),
		"product_id": product.ID,
		"changed_by": sess.Actor(),
	})
	return product, nil
}
