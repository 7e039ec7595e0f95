package handler

import (
	"context"

	cartapp "github.com/albazaar/storefront/internal/application/cart"
	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// CartReader returns the cart view of a session
type CartReader interface {
	Get(ctx context.Context, session *identity.Session) (cartapp.CartView, error)
}

// SessionHandler serves the session status shown in the page header
type SessionHandler struct {
	BaseHandler
	login *identityapp.LoginService
	carts CartReader
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(login *identityapp.LoginService, carts CartReader) *SessionHandler {
	return &SessionHandler{login: login, carts: carts}
}

// SessionStatusResponse is the header state of a session
type SessionStatusResponse struct {
	identityapp.LoginView
	CartCount int `json:"cart_count"`
}

// Status returns the login state and cart badge count.
// A logged-in session whose backend credential was rejected is reported as
// logged out rather than as an error.
// GET /api/v1/session
func (h *SessionHandler) Status(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	session := resolved.Session

	var count int
	if session.IsAuthenticated() {
		view, err := h.carts.Get(c.Request.Context(), session)
		if err == nil {
			count = view.Count
		}
	}

	h.Success(c, SessionStatusResponse{
		LoginView: h.login.Status(session),
		CartCount: count,
	})
}
