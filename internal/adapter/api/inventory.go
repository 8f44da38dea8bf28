package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/YelzhanWeb/floreria/internal/domain"
)

var productPaths = map[domain.ProductKind]string{
	domain.ProductBouquet: "/bouquets",
	domain.ProductFlower:  "/flowers/flower",
}

// CreateProduct uploads a bouquet or a flower as a multipart form.
func (r *catalogRepository) CreateProduct(ctx context.Context, p domain.NewProduct) (*domain.Product, error) {
	path, ok := productPaths[p.Kind]
	if !ok {
		return nil, errors.Wrapf(domain.ErrInvalidRequest, "no endpoint for %s", p.Kind)
	}

	body, contentType, err := productForm(p, r.client.Session().Actor(), time.Now().UTC())
	if err != nil {
		return nil, errors.Wrap(err, "encode product form")
	}

	var dto productDTO
	if _, err := r.client.send(ctx, "create_product", http.MethodPost, path, contentType, body, &dto); err != nil {
		if _, ok := asRepositoryError(err); ok {
			return nil, err
		}
		// created, but the answer could not be read
		dto = productDTO{}
	}

	product := dto.mergeInto(domain.Product{
		Kind:     p.Kind,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
		ImageURL: p.ImageURL,
	})
	return &product, nil
}

func productForm(p domain.NewProduct, actor string, now time.Time) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	stamp := now.Format(time.RFC3339)
	fields := [][2]string{{"name", p.Name}}
	if p.Kind == domain.ProductFlower {
		fields = append(fields, [2]string{"color", p.Color})
	} else {
		fields = append(fields,
			[2]string{"type_name", p.TypeName},
			[2]string{"details", p.Details},
			[2]string{"is_precreated", "1"},
			[2]string{"flower_quantity", strconv.Itoa(p.FlowerQuantity)},
		)
	}
	fields = append(fields,
		[2]string{"price", p.Price.String()},
		[2]string{"quantity", strconv.Itoa(p.Quantity)},
		[2]string{"created_at", stamp},
		[2]string{"created_by", actor},
		[2]string{"updated_at", stamp},
		[2]string{"updated_by", actor},
		[2]string{"deleted", "false"},
	)
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if len(p.Image) > 0 {
		name := p.ImageName
		if name == "" {
			name = "image.jpg"
		}
		part, err := w.CreateFormFile("image_url", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(p.Image); err != nil {
			return nil, "", err
		}
	} else if err := w.WriteField("existing_image_url", p.ImageURL); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
