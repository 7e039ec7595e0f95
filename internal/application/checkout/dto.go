package checkout

import (
	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// QuoteView is the checkout page: prefilled form, cart snapshot and price
type QuoteView struct {
	Form  order.CheckoutForm `json:"form"`
	Items []cart.Item        `json:"items"`
	Count int                `json:"count"`
	Quote order.Quote        `json:"quote"`
}

// Result is the outcome of a submission
type Result struct {
	CheckoutID string            `json:"checkout_id"`
	Completed  bool              `json:"completed"`
	Total      valueobject.Money `json:"total"`
	Journal    *order.Journal    `json:"journal"`
}

// FailureDetails tells the client which checkout to retry after a failed
// step
type FailureDetails struct {
	CheckoutID string `json:"checkout_id"`
}

// NewResult renders journal
func NewResult(journal *order.Journal) Result {
	return Result{
		CheckoutID: journal.CheckoutID,
		Completed:  journal.Completed,
		Total:      journal.Total(),
		Journal:    journal,
	}
}
