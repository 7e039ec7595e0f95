package integration

import (
	"context"
	"errors"

	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/catalog"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/order"
)

var (
	ErrBackendUnavailable     = errors.New("integration: store backend unavailable")
	ErrBackendUnauthorized    = errors.New("integration: store backend rejected the credential")
	ErrBackendRequestFailed   = errors.New("integration: store backend request failed")
	ErrBackendInvalidResponse = errors.New("integration: invalid store backend response")
	ErrBackendNotFound        = errors.New("integration: resource not found on store backend")
	ErrBackendRejected        = errors.New("integration: store backend declined the request")
)

// Credential identifies the shopper to the backend
type Credential struct {
	Phone string
	Token string
}

// SessionCredential is the credential of a logged-in session
func SessionCredential(s *identity.Session) Credential {
	return Credential{Phone: s.Phone, Token: s.BackendToken}
}

// Bearer returns what is sent as the bearer credential. Older backend
// deployments identify shoppers by phone only, so the phone stands in when
// no token was issued.
func (c Credential) Bearer() string {
	if c.Token != "" {
		return c.Token
	}
	return c.Phone
}

// Verification is the backend's answer to an OTP check
type Verification struct {
	Activated bool
	Token     string
	// Address is the saved address, empty when the shopper has none
	Address string
}

// AddressUpdate is posted by the address login step
type AddressUpdate struct {
	ReceiverName    string
	Address         string
	DetailedAddress string
}

// AuthBackend issues and checks one-time passwords
type AuthBackend interface {
	RequestOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string) (Verification, error)
	UpdateAddress(ctx context.Context, cred Credential, update AddressUpdate) error
}

// AccountBackend serves the shopper profile and order history
type AccountBackend interface {
	GetUser(ctx context.Context, cred Credential) (identity.UserProfile, error)
	UpdateUser(ctx context.Context, cred Credential, profile identity.UserProfile) (identity.UserProfile, error)
	GetOrders(ctx context.Context, cred Credential) ([]order.Order, error)
}

// CartBackend owns the canonical cart
type CartBackend interface {
	GetCart(ctx context.Context, cred Credential) ([]cart.Item, error)
	AddToCart(ctx context.Context, cred Credential, item cart.Item) error
	IncreaseCart(ctx context.Context, cred Credential, productID string) error
	DecreaseCart(ctx context.Context, cred Credential, productID string) error
	DeleteCart(ctx context.Context, cred Credential, productID string) error
}

// OrderBackend places orders
type OrderBackend interface {
	CreateOrder(ctx context.Context, cred Credential, req order.PlaceOrderRequest) error
	SendConfirmation(ctx context.Context, cred Credential, phone string, total int64) error
}

// CatalogBackend serves the public catalog
type CatalogBackend interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
	// CategoryTree returns categories with their subcategories nested
	CategoryTree(ctx context.Context) ([]catalog.Category, error)
	Products(ctx context.Context, query catalog.ProductQuery) ([]catalog.Product, error)
	Product(ctx context.Context, id string) (catalog.Product, error)
	Specials(ctx context.Context) ([]catalog.Product, error)
}

// StoreBackend is the full backend surface
type StoreBackend interface {
	AuthBackend
	AccountBackend
	CartBackend
	OrderBackend
	CatalogBackend
}

// IsUnauthorized reports whether err means the credential was rejected
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrBackendUnauthorized)
}
