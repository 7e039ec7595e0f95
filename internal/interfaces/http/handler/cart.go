package handler

import (
	"context"

	cartapp "github.com/albazaar/storefront/internal/application/cart"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CartHandler serves the cart. Every response carries the cart as the
// backend holds it after the operation.
type CartHandler struct {
	BaseHandler
	carts *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cartapp.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// AddCartItemRequest adds a product. Quantity defaults to one.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,notblank,max=64"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=99"`
}

// GetCart returns the cart
// GET /api/v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	view, err := h.carts.Get(c.Request.Context(), resolved.Session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// AddItem puts a product into the cart
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.carts.Add(c.Request.Context(), resolved.Session, req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// IncreaseItem adds one unit of a line
// PATCH /api/v1/cart/items/:id/increase
func (h *CartHandler) IncreaseItem(c *gin.Context) {
	h.mutate(c, h.carts.Increase)
}

// DecreaseItem removes one unit of a line
// PATCH /api/v1/cart/items/:id/decrease
func (h *CartHandler) DecreaseItem(c *gin.Context) {
	h.mutate(c, h.carts.Decrease)
}

// DeleteItem removes a line
// DELETE /api/v1/cart/items/:id
func (h *CartHandler) DeleteItem(c *gin.Context) {
	h.mutate(c, h.carts.Delete)
}

type lineMutation func(ctx context.Context, session *identity.Session, productID string) (cartapp.CartView, error)

func (h *CartHandler) mutate(c *gin.Context, op lineMutation) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	view, err := op(c.Request.Context(), resolved.Session, uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
