package cart

import (
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item represents a single order line in the cart.
// There is at most one Item per product ID; scanning the same product
// again is a no-op rather than a quantity increment. Quantity changes
// go through the explicit update operation on the Store.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

// NewItem creates a cart line for a product with quantity 1
func NewItem(id, name string, price decimal.Decimal, image string) (Item, error) {
	if id == "" {
		return Item{}, shared.NewDomainError("INVALID_ITEM", "Product ID cannot be empty")
	}
	if price.IsNegative() {
		return Item{}, shared.NewDomainError("INVALID_ITEM", "Product price cannot be negative")
	}
	return Item{
		ID:       id,
		Name:     name,
		Price:    price,
		Image:    image,
		Quantity: 1,
	}, nil
}

// LineTotal returns price multiplied by quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Totals holds the aggregate figures derived from the cart contents
type Totals struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
