package cart

import (
	"time"

	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// CartView is the cart as last returned by the backend
type CartView struct {
	Items    []cart.Item       `json:"items"`
	Count    int               `json:"count"`
	Subtotal valueobject.Money `json:"subtotal"`
	// AckUntil is set after an add: the "Added" acknowledgement is shown
	// until then
	AckUntil *time.Time `json:"ack_until,omitempty"`
}

// NewCartView renders c
func NewCartView(c *cart.Cart) CartView {
	return CartView{
		Items:    c.Items(),
		Count:    c.Count(),
		Subtotal: c.Subtotal(),
	}
}
