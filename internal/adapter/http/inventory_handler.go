package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
)

const maxUploadSize = 10 << 20

// InventoryHandler serves the admin inventory screen.
type InventoryHandler struct {
	inventory interfaces.InventoryService
	logger    logger.Logger
}

func NewInventoryHandler(inventory interfaces.InventoryService, logger logger.Logger) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, logger: logger}
}

type ProductResponse struct {
	ID       int    `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	ImageURL string `json:"image_url,omitempty"`
}

// CreateProduct takes a multipart form: name, price, quantity, color (flowers),
// type_name, details and flower_quantity (bouquets), and either an "image" file
// or an existing_image_url.
func (h *InventoryHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	kind, err := domain.ParseProductKind(r.PathValue("kind"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error(), nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form", nil)
		return
	}

	p, err := productFromForm(r, kind)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	product, err := h.inventory.CreateProduct(r.Context(), sess, p)
	if err != nil {
		fail(h.logger, w, r, "create_product_failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, ProductResponse{
		ID:       product.ID,
		Kind:     product.Kind.String(),
		Name:     product.Name,
		Price:    product.Price.StringFixed(2),
		Quantity: product.Quantity,
		ImageURL: product.ImageURL,
	})
}

func productFromForm(r *http.Request, kind domain.ProductKind) (domain.NewProduct, error) {
	p := domain.NewProduct{
		Kind:     kind,
		Name:     strings.TrimSpace(r.FormValue("name")),
		Color:    strings.TrimSpace(r.FormValue("color")),
		TypeName: strings.TrimSpace(r.FormValue("type_name")),
		Details:  r.FormValue("details"),
		ImageURL: strings.TrimSpace(r.FormValue("existing_image_url")),
	}

	price, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("price")))
	if err != nil {
		return p, errors.New("price must be a number")
	}
	p.Price = price

	if p.Quantity, err = formInt(r, "quantity"); err != nil {
		return p, err
	}
	if p.FlowerQuantity, err = formInt(r, "flower_quantity"); err != nil {
		return p, err
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return p, errors.New("unreadable image")
	default:
		defer file.Close()
		if p.Image, err = io.ReadAll(file); err != nil {
			return p, errors.New("unreadable image")
		}
		p.ImageName = header.Filename
	}
	return p, nil
}

func formInt(r *http.Request, key string) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(key + " must be a whole number")
	}
	return n, nil
}
