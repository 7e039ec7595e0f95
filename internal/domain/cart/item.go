package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/albazaar/storefront/internal/domain/catalog"
	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// Item is one cart line in the backend's wire shape
type Item struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Images       []string        `json:"images"`
	Weight       catalog.Text    `json:"weight"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
}

// NewItemFromProduct builds the add-to-cart payload for qty units of p.
// The quantity is clamped to the stock the backend reports.
func NewItemFromProduct(p catalog.Product, qty int) (Item, error) {
	if p.ID == "" {
		return Item{}, ErrInvalidProduct
	}
	if qty < 1 {
		return Item{}, ErrInvalidQuantity
	}
	qty = p.ClampQuantity(qty)

	images := p.Images
	if images == nil {
		images = []string{}
	}
	item := Item{
		ProductID:    p.ID,
		ProductName:  p.TitleEn,
		ProductPrice: p.SellingPrice().Amount(),
		Images:       images,
		Weight:       p.Weight,
		Quantity:     qty,
	}
	return item.Recompute(), nil
}

// Recompute sets Total to Quantity x ProductPrice
func (i Item) Recompute() Item {
	i.Total = i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return i
}

// LineTotal returns the line total as money
func (i Item) LineTotal() valueobject.Money {
	return valueobject.WonFromDecimal(i.Total)
}

// UnitPrice returns the unit price as money
func (i Item) UnitPrice() valueobject.Money {
	return valueobject.WonFromDecimal(i.ProductPrice)
}

// MarshalJSON writes prices as JSON numbers, the shape the backend stores
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ProductID    string       `json:"product_id"`
		ProductName  string       `json:"product_name"`
		ProductPrice json.Number  `json:"product_price"`
		Images       []string     `json:"images"`
		Weight       catalog.Text `json:"weight"`
		Quantity     int          `json:"quantity"`
		Total        json.Number  `json:"total"`
	}{
		ProductID:    i.ProductID,
		ProductName:  i.ProductName,
		ProductPrice: json.Number(i.ProductPrice.String()),
		Images:       i.Images,
		Weight:       i.Weight,
		Quantity:     i.Quantity,
		Total:        json.Number(i.Total.String()),
	})
}
