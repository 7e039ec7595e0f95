package cart

import (
	"time"

	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// AckWindow is how long an "added to cart" acknowledgement stays visible.
// The deadline is issued before the backend is called and does not depend
// on its result.
const AckWindow = 1500 * time.Millisecond

// AckDeadline returns the acknowledgement deadline for an add issued at now
func AckDeadline(now time.Time) time.Time {
	return now.Add(AckWindow)
}

// Cart is the canonical cart exactly as last fetched from the backend.
// It is never merged with local changes.
type Cart struct {
	items []Item
}

// New builds a cart from backend lines. Lines sharing a product id are
// merged into the first one and every total is recomputed from quantity
// and unit price.
func New(lines []Item) *Cart {
	c := &Cart{items: make([]Item, 0, len(lines))}
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		if pos, ok := index[line.ProductID]; ok {
			merged := c.items[pos]
			merged.Quantity += line.Quantity
			c.items[pos] = merged.Recompute()
			continue
		}
		index[line.ProductID] = len(c.items)
		if line.Images == nil {
			line.Images = []string{}
		}
		c.items = append(c.items, line.Recompute())
	}
	return c
}

// Empty returns a cart with no lines
func Empty() *Cart {
	return New(nil)
}

// Items returns a copy of the lines
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct products
func (c *Cart) Len() int {
	return len(c.items)
}

// Count returns the number of units across all lines
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Subtotal is the sum of every line total
func (c *Cart) Subtotal() valueobject.Money {
	total := valueobject.ZeroWon()
	for _, it := range c.items {
		total = total.MustAdd(it.LineTotal())
	}
	return total
}
