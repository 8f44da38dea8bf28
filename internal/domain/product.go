package domain

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

type ProductKind int

const (
	ProductBouquet ProductKind = iota + 1
	ProductFlower
)

func (k ProductKind) String() string {
	switch k {
	case ProductBouquet:
		return "bouquet"
	case ProductFlower:
		return "flower"
	default:
		return "unknown"
	}
}

// ParseProductKind accepts the names used by the inventory endpoints.
func ParseProductKind(s string) (ProductKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bouquet", "bouquets", "ramo":
		return ProductBouquet, nil
	case "flower", "flowers", "flor":
		return ProductFlower, nil
	}
	return 0, fmt.Errorf("%w: unknown product kind %q", ErrInvalidRequest, s)
}

// NewProduct is an inventory item an admin adds to the shop.
// Either Image or ImageURL must be set.
type NewProduct struct {
	Kind           ProductKind
	Name           string
	Color          string // flowers
	TypeName       string // bouquets
	Details        string // bouquets
	FlowerQuantity int    // bouquets
	Price          decimal.Decimal
	Quantity       int
	ImageURL       string
	Image          []byte
	ImageName      string
}

// Product is an inventory item as stored by the shop API.
type Product struct {
	ID       int
	Kind     ProductKind
	Name     string
	Price    decimal.Decimal
	Quantity int
	ImageURL string
}

func (p NewProduct) Validate() error {
	if p.Kind != ProductBouquet && p.Kind != ProductFlower {
		return fmt.Errorf("%w: unknown product kind", ErrInvalidRequest)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	text := map[string]string{"name": p.Name}
	if p.Kind == ProductFlower {
		text["color"] = p.Color
	} else {
		text["type_name"] = p.TypeName
	}
	for field, value := range text {
		if !lettersOnly(value) {
			return fmt.Errorf("%w: %s may only contain letters and spaces", ErrInvalidRequest, field)
		}
	}

	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}
	if p.Quantity < 0 || p.FlowerQuantity < 0 {
		return fmt.Errorf("%w: quantities cannot be negative", ErrInvalidRequest)
	}
	if len(p.Image) == 0 && strings.TrimSpace(p.ImageURL) == "" {
		return fmt.Errorf("%w: an image is required", ErrInvalidRequest)
	}
	return nil
}

func lettersOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
