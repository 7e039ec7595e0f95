package order

import "github.com/albazaar/storefront/internal/domain/shared"

// Checkout errors
var (
	ErrCheckoutInvalid     = shared.NewDomainError("CHECKOUT_INVALID", "Please fill in all required fields")
	ErrCheckoutInProgress  = shared.NewDomainError("CHECKOUT_IN_PROGRESS", "Your order is already being submitted")
	ErrCheckoutFailed      = shared.NewDomainError("CHECKOUT_FAILED", "Failed to complete the checkout. Please try again.")
	ErrCheckoutNotFound    = shared.NewDomainError("CHECKOUT_NOT_FOUND", "Checkout not found")
	ErrInvalidShippingTier = shared.NewDomainError("INVALID_SHIPPING_TIER", "Delivery option must be normal or island")
)
