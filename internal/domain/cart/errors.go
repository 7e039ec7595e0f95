package cart

import "github.com/albazaar/storefront/internal/domain/shared"

// Cart errors
var (
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	ErrInvalidProduct  = shared.NewDomainError("INVALID_PRODUCT", "Product cannot be added to the cart")
	ErrItemNotFound    = shared.NewDomainError("CART_ITEM_NOT_FOUND", "Item is not in the cart")
	ErrCartEmpty       = shared.NewDomainError("CART_EMPTY", "Your cart is empty")
	ErrUpdateFailed    = shared.NewDomainError("CART_UPDATE_FAILED", "Your cart could not be updated. Please try again.")
)
