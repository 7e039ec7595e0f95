package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// Product is a sellable item as returned by the backend. Field names follow
// the backend's JSON.
type Product struct {
	ID          string          `json:"_id"`
	TitleEn     string          `json:"title_en"`
	Description string          `json:"description,omitempty"`
	Brand       string          `json:"brand,omitempty"`
	CategoryEn  string          `json:"category_en,omitempty"`
	Origin      string          `json:"origin,omitempty"`
	Unit        Text            `json:"unit,omitempty"`
	Weight      Text            `json:"weight"`
	Price       decimal.Decimal `json:"price"`
	FixedPrice  decimal.Decimal `json:"fixed_price"`
	Sale        int             `json:"sale,omitempty"`
	Quantity    int             `json:"quantity"`
	Images      []string        `json:"images"`
}

// SellingPrice is the price charged: the fixed (discounted) price when the
// backend set one, otherwise the list price.
func (p Product) SellingPrice() valueobject.Money {
	if p.FixedPrice.IsPositive() {
		return valueobject.WonFromDecimal(p.FixedPrice)
	}
	return valueobject.WonFromDecimal(p.Price)
}

// ClampQuantity limits qty to the stock the backend reports. Products
// without a stock figure are not limited.
func (p Product) ClampQuantity(qty int) int {
	if p.Quantity > 0 && qty > p.Quantity {
		return p.Quantity
	}
	return qty
}

// Category is a top-level catalog category with its subcategories
type Category struct {
	ID            string        `json:"_id"`
	Name          string        `json:"name,omitempty"`
	NameEn        string        `json:"name_en"`
	Image         string        `json:"image,omitempty"`
	Subcategories []Subcategory `json:"categories,omitempty"`
}

// Subcategory belongs to one category
type Subcategory struct {
	ID       string `json:"_id"`
	Name     string `json:"name,omitempty"`
	NameEn   string `json:"name_en"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
}
