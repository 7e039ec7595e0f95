package handler

import (
	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves the profile and order history pages
type AccountHandler struct {
	BaseHandler
	accounts *identityapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *identityapp.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// UpdateProfileRequest is the profile form
type UpdateProfileRequest struct {
	Name          string `json:"name" binding:"required,notblank,max=100"`
	Address       string `json:"address" binding:"max=300"`
	DetailAddress string `json:"detail_address" binding:"max=300"`
}

// GetProfile returns the shopper profile
// GET /api/v1/account/profile
func (h *AccountHandler) GetProfile(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	profile, err := h.accounts.Profile(c.Request.Context(), resolved.Session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateProfile saves name and address
// PUT /api/v1/account/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	profile, err := h.accounts.UpdateProfile(c.Request.Context(), resolved.Session, identityapp.ProfileInput{
		Name:          req.Name,
		Address:       req.Address,
		DetailAddress: req.DetailAddress,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// ListOrders returns past orders, newest first
// GET /api/v1/account/orders
func (h *AccountHandler) ListOrders(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	orders, err := h.accounts.Orders(c.Request.Context(), resolved.Session)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
