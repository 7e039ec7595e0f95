package order

import (
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// EventTypeOrderPlaced is published once per checkout after the backend
// accepted the order
const EventTypeOrderPlaced = "order.placed"

// OrderPlacedEvent carries the accepted order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	Phone        string       `json:"phone"`
	Total        int64        `json:"total"`
	ItemCount    int          `json:"item_count"`
	ShippingTier ShippingTier `json:"shipping_tier"`
}

// NewOrderPlacedEvent creates an OrderPlacedEvent for checkoutID. The event
// ID is derived from checkoutID, so a resumed checkout republishes the same ID.
func NewOrderPlacedEvent(checkoutID string, req PlaceOrderRequest, tier ShippingTier) *OrderPlacedEvent {
	count := 0
	for _, it := range req.Cart {
		count += it.Quantity
	}
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEventWithID(
			OrderPlacedEventID(checkoutID), EventTypeOrderPlaced, "checkout", checkoutID),
		Phone:        req.UserID,
		Total:        req.Total,
		ItemCount:    count,
		ShippingTier: tier,
	}
}

// OrderPlacedEventID returns the stable event ID for a checkout
func OrderPlacedEventID(checkoutID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(EventTypeOrderPlaced+":"+checkoutID))
}
