package router

import (
	"github.com/albazaar/storefront/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the storefront API handlers
type Handlers struct {
	Session  *handler.SessionHandler
	Auth     *handler.AuthHandler
	Account  *handler.AccountHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Catalog  *handler.CatalogHandler
}

// Guards are the per-group middleware of the storefront API. AuthLimit may
// be nil when OTP rate limiting is off.
type Guards struct {
	RequireLogin gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
}

// StorefrontGroups builds the route groups of the storefront API. The
// catalog and login flow are public; account, cart and checkout need a
// logged-in session.
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	sessionRoutes := NewDomainGroup("session", "/session")
	sessionRoutes.GET("", h.Session.Status)

	// Only the calls that reach the OTP provider are rate limited
	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/phone", guarded(g.AuthLimit, h.Auth.RequestOTP)...)
	authRoutes.PATCH("/otp/keys", h.Auth.OTPKey)
	authRoutes.GET("/otp/countdown", h.Auth.Countdown)
	authRoutes.POST("/otp/verify", guarded(g.AuthLimit, h.Auth.VerifyOTP)...)
	authRoutes.POST("/address", h.Auth.SubmitAddress)
	authRoutes.POST("/logout", h.Auth.Logout)

	accountRoutes := NewDomainGroup("account", "/account").Use(g.RequireLogin)
	accountRoutes.GET("/profile", h.Account.GetProfile)
	accountRoutes.PUT("/profile", h.Account.UpdateProfile)
	accountRoutes.GET("/orders", h.Account.ListOrders)

	cartRoutes := NewDomainGroup("cart", "/cart").Use(g.RequireLogin)
	cartRoutes.GET("", h.Cart.GetCart)
	cartRoutes.POST("/items", h.Cart.AddItem)
	cartRoutes.PATCH("/items/:id/increase", h.Cart.IncreaseItem)
	cartRoutes.PATCH("/items/:id/decrease", h.Cart.DecreaseItem)
	cartRoutes.DELETE("/items/:id", h.Cart.DeleteItem)

	checkoutRoutes := NewDomainGroup("checkout", "/checkout").Use(g.RequireLogin)
	checkoutRoutes.GET("/quote", h.Checkout.Quote)
	checkoutRoutes.POST("", h.Checkout.Submit)
	checkoutRoutes.GET("/:id", h.Checkout.GetJournal)

	catalogRoutes := NewDomainGroup("catalog", "/catalog")
	catalogRoutes.GET("/categories", h.Catalog.ListCategories)
	catalogRoutes.GET("/subcategories", h.Catalog.ListSubcategories)
	catalogRoutes.GET("/products", h.Catalog.ListProducts)
	catalogRoutes.GET("/products/:id", h.Catalog.GetProduct)
	catalogRoutes.GET("/specials", h.Catalog.ListSpecials)

	return []*DomainGroup{
		sessionRoutes,
		authRoutes,
		accountRoutes,
		cartRoutes,
		checkoutRoutes,
		catalogRoutes,
	}
}

func guarded(guard, h gin.HandlerFunc) []gin.HandlerFunc {
	if guard == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{guard, h}
}
