package order

import (
	"strings"

	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// ShippingTier is the delivery option picked at checkout
type ShippingTier string

const (
	ShippingNormal ShippingTier = "normal"
	ShippingIsland ShippingTier = "island"
)

// ParseShippingTier parses a tier name. Empty selects normal delivery.
func ParseShippingTier(s string) (ShippingTier, error) {
	switch ShippingTier(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShippingNormal:
		return ShippingNormal, nil
	case ShippingIsland:
		return ShippingIsland, nil
	}
	return "", ErrInvalidShippingTier
}

// ShippingPolicy prices delivery
type ShippingPolicy struct {
	NormalFee             valueobject.Money
	IslandFee             valueobject.Money
	FreeShippingEnabled   bool
	FreeShippingThreshold valueobject.Money
}

// DefaultShippingPolicy charges 3500 for normal and 5000 for island
// delivery. Free shipping over 100000 exists but is off.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		NormalFee:             valueobject.Won(3500),
		IslandFee:             valueobject.Won(5000),
		FreeShippingEnabled:   false,
		FreeShippingThreshold: valueobject.Won(100000),
	}
}

// Fee returns the delivery fee for tier before any waiver
func (p ShippingPolicy) Fee(tier ShippingTier) valueobject.Money {
	if tier == ShippingIsland {
		return p.IslandFee
	}
	return p.NormalFee
}

// Quote prices an order
type Quote struct {
	Tier         ShippingTier      `json:"tier"`
	Subtotal     valueobject.Money `json:"subtotal"`
	Shipping     valueobject.Money `json:"shipping"`
	Total        valueobject.Money `json:"total"`
	FreeShipping bool              `json:"free_shipping"`
}

// Quote returns subtotal plus the delivery fee for tier
func (p ShippingPolicy) Quote(subtotal valueobject.Money, tier ShippingTier) Quote {
	q := Quote{
		Tier:     tier,
		Subtotal: subtotal,
		Shipping: p.Fee(tier),
	}
	if p.FreeShippingEnabled {
		if ok, err := subtotal.GreaterThanOrEqual(p.FreeShippingThreshold); err == nil && ok {
			q.Shipping = valueobject.ZeroWon()
			q.FreeShipping = true
		}
	}
	q.Total = subtotal.MustAdd(q.Shipping)
	return q
}
