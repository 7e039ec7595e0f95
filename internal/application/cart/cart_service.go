package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/catalog"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Cart mutation names used in logs and metrics
const (
	OpAdd      = "add"
	OpIncrease = "increase"
	OpDecrease = "decrease"
	OpDelete   = "delete"
)

// ProductLookup resolves the catalog product behind an add-to-cart
type ProductLookup interface {
	Product(ctx context.Context, id string) (catalog.Product, error)
}

// CartService keeps the shopper's view of the cart equal to what the
// backend last returned. Every mutation is followed by a full refetch.
type CartService struct {
	backend  integration.CartBackend
	products ProductLookup
	sessions *identityapp.SessionManager
	metrics  *telemetry.StorefrontMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewCartService creates a new cart service
func NewCartService(
	backend integration.CartBackend,
	products ProductLookup,
	sessions *identityapp.SessionManager,
	metrics *telemetry.StorefrontMetrics,
	logger *zap.Logger,
) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		backend:  backend,
		products: products,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Fetch loads the canonical cart. A rejected credential logs the session
// out and yields identity.ErrSessionExpired; other failures are returned
// as-is.
func (s *CartService) Fetch(ctx context.Context, session *identity.Session) (*cart.Cart, error) {
	if !session.IsAuthenticated() {
		return nil, identity.ErrLoginRequired
	}
	items, err := s.backend.GetCart(ctx, integration.SessionCredential(session))
	if err != nil {
		return nil, s.sessions.HandleBackendError(ctx, session, err)
	}
	return cart.New(items), nil
}

// Get returns the cart view. Anonymous sessions see an empty cart and a
// failed fetch resets the view to empty.
func (s *CartService) Get(ctx context.Context, session *identity.Session) (CartView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CartService", "Get")
	defer span.End()

	if !session.IsAuthenticated() {
		return NewCartView(cart.Empty()), nil
	}
	return s.refetch(ctx, session)
}

// Add puts qty units of a product into the cart. The acknowledgement
// deadline is fixed before the backend is called.
func (s *CartService) Add(ctx context.Context, session *identity.Session, productID string, qty int) (CartView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CartService", "Add",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID),
		telemetry.WithAttribute(telemetry.SpanAttrQuantity, qty))
	defer span.End()

	ackUntil := cart.AckDeadline(s.now())
	if !session.IsAuthenticated() {
		return CartView{}, identity.ErrLoginRequired
	}

	product, err := s.products.Product(ctx, strings.TrimSpace(productID))
	if err != nil {
		telemetry.RecordError(span, err)
		return CartView{}, err
	}
	item, err := cart.NewItemFromProduct(product, qty)
	if err != nil {
		return CartView{}, err
	}

	view, err := s.mutate(ctx, session, OpAdd, item.ProductID, func(cred integration.Credential) error {
		return s.backend.AddToCart(ctx, cred, item)
	})
	if errors.Is(err, cart.ErrUpdateFailed) {
		telemetry.RecordError(span, err)
		view.AckUntil = &ackUntil
		return view, cart.ErrUpdateFailed.WithDetails(view)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return CartView{}, err
	}
	view.AckUntil = &ackUntil
	return view, nil
}

// Increase adds one unit of productID
func (s *CartService) Increase(ctx context.Context, session *identity.Session, productID string) (CartView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CartService", "Increase",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID))
	defer span.End()

	return s.mutate(ctx, session, OpIncrease, productID, func(cred integration.Credential) error {
		return s.backend.IncreaseCart(ctx, cred, productID)
	})
}

// Decrease removes one unit of productID
func (s *CartService) Decrease(ctx context.Context, session *identity.Session, productID string) (CartView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CartService", "Decrease",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID))
	defer span.End()

	return s.mutate(ctx, session, OpDecrease, productID, func(cred integration.Credential) error {
		return s.backend.DecreaseCart(ctx, cred, productID)
	})
}

// Delete removes the line for productID
func (s *CartService) Delete(ctx context.Context, session *identity.Session, productID string) (CartView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CartService", "Delete",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, productID))
	defer span.End()

	return s.mutate(ctx, session, OpDelete, productID, func(cred integration.Credential) error {
		return s.backend.DeleteCart(ctx, cred, productID)
	})
}

// mutate runs one backend mutation and then refetches. Only a rejected
// credential stops the refetch. Any other failure still refetches, then
// aborts with ErrUpdateFailed carrying the cart the backend actually holds.
func (s *CartService) mutate(
	ctx context.Context,
	session *identity.Session,
	op, productID string,
	call func(integration.Credential) error,
) (CartView, error) {
	if !session.IsAuthenticated() {
		return CartView{}, identity.ErrLoginRequired
	}
	if strings.TrimSpace(productID) == "" {
		return CartView{}, cart.ErrItemNotFound
	}

	err := call(integration.SessionCredential(session))
	s.metrics.RecordCartMutation(ctx, op, err)
	if err != nil {
		if integration.IsUnauthorized(err) {
			return CartView{}, s.sessions.HandleBackendError(ctx, session, err)
		}
		s.log(ctx).Warn("Cart mutation failed",
			zap.String("op", op),
			zap.String("product_id", productID),
			zap.Error(err))
	}

	view, fetchErr := s.refetch(ctx, session)
	if fetchErr != nil || err == nil {
		return view, fetchErr
	}
	return view, cart.ErrUpdateFailed.WithDetails(view)
}

func (s *CartService) refetch(ctx context.Context, session *identity.Session) (CartView, error) {
	c, err := s.Fetch(ctx, session)
	if err != nil {
		if isSessionError(err) {
			return NewCartView(cart.Empty()), err
		}
		s.log(ctx).Warn("Failed to fetch cart, showing empty cart", zap.Error(err))
		return NewCartView(cart.Empty()), nil
	}
	return NewCartView(c), nil
}

func (s *CartService) log(ctx context.Context) *zap.Logger {
	return logger.WithLogger(ctx, s.logger)
}

func isSessionError(err error) bool {
	return errors.Is(err, identity.ErrSessionExpired) || errors.Is(err, identity.ErrLoginRequired)
}
