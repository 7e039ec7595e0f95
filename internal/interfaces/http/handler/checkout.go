package handler

import (
	"strings"

	checkoutapp "github.com/albazaar/storefront/internal/application/checkout"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the checkout ID of a submission. Retrying
// with the same key resumes the same checkout.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// CheckoutHandler serves the checkout page
type CheckoutHandler struct {
	BaseHandler
	checkout *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// QuoteRequest selects the delivery option to price
type QuoteRequest struct {
	Tier string `form:"tier" binding:"omitempty,oneof=normal island"`
}

// CheckoutRequest is the delivery form. Blank required fields are reported
// together as ERR_CHECKOUT_INVALID.
type CheckoutRequest struct {
	ReceiverName  string `json:"receiver_name" binding:"max=100"`
	ReceiverPhone string `json:"receiver_phone" binding:"max=32"`
	FullAddress   string `json:"full_address" binding:"max=600"`
	Notes         string `json:"notes" binding:"max=500"`
	SaveInfo      bool   `json:"save_info"`
	Tier          string `json:"tier" binding:"omitempty,oneof=normal island"`
}

// Quote prices the cart and prefills the form from the profile
// GET /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var req QuoteRequest
	if !h.BindQuery(c, &req) {
		return
	}

	view, err := h.checkout.Quote(c.Request.Context(), resolved.Session, req.Tier)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Submit places the order
// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}

	checkoutID := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(checkoutID) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}

	var req CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.checkout.Submit(c.Request.Context(), resolved.Session, order.CheckoutForm{
		ReceiverName:  req.ReceiverName,
		ReceiverPhone: req.ReceiverPhone,
		FullAddress:   req.FullAddress,
		Notes:         req.Notes,
		SaveInfo:      req.SaveInfo,
		Tier:          order.ShippingTier(req.Tier),
	}, checkoutID)
	if result.CheckoutID != "" {
		c.Header(IdempotencyKeyHeader, result.CheckoutID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetJournal returns the progress of a checkout
// GET /api/v1/checkout/:id
func (h *CheckoutHandler) GetJournal(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	journal, err := h.checkout.GetJournal(c.Request.Context(), resolved.Session, uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, checkoutapp.NewResult(journal))
}
