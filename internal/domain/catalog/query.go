package catalog

import "fmt"

// Paging defaults
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ProductQuery selects one page of products, optionally filtered
type ProductQuery struct {
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
}

// Normalize applies the paging defaults and caps the limit
func (q ProductQuery) Normalize() ProductQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// CacheKey identifies the query for read-through caching
func (q ProductQuery) CacheKey() string {
	q = q.Normalize()
	return fmt.Sprintf("products:%d:%d:%s:%s", q.Page, q.Limit, q.Category, q.Subcategory)
}

// ProductPage is one page of products
type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	HasMore  bool      `json:"has_more"`
}

// NewProductPage builds a page for query. A full page means more may
// follow.
func NewProductPage(query ProductQuery, products []Product) ProductPage {
	query = query.Normalize()
	if products == nil {
		products = []Product{}
	}
	return ProductPage{
		Products: products,
		Page:     query.Page,
		Limit:    query.Limit,
		HasMore:  len(products) >= query.Limit,
	}
}
