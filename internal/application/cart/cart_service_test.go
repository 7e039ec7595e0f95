package cart

import (
	"context"
	"testing"
	"time"

	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/catalog"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/auth"
	"github.com/albazaar/storefront/internal/infrastructure/cache"
	"github.com/albazaar/storefront/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockCartBackend struct {
	mock.Mock
}

func (m *MockCartBackend) GetCart(ctx context.Context, cred integration.Credential) ([]cart.Item, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Item), args.Error(1)
}

func (m *MockCartBackend) AddToCart(ctx context.Context, cred integration.Credential, item cart.Item) error {
	return m.Called(ctx, cred, item).Error(0)
}

func (m *MockCartBackend) IncreaseCart(ctx context.Context, cred integration.Credential, productID string) error {
	return m.Called(ctx, cred, productID).Error(0)
}

func (m *MockCartBackend) DecreaseCart(ctx context.Context, cred integration.Credential, productID string) error {
	return m.Called(ctx, cred, productID).Error(0)
}

func (m *MockCartBackend) DeleteCart(ctx context.Context, cred integration.Credential, productID string) error {
	return m.Called(ctx, cred, productID).Error(0)
}

type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) Product(ctx context.Context, id string) (catalog.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Error(1)
}

var testCred = integration.Credential{Phone: "01012345678", Token: "backend-token"}

type fixture struct {
	service  *CartService
	backend  *MockCartBackend
	products *MockProductLookup
	sessions *identityapp.SessionManager
	store    *cache.InMemoryStore
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewJWTService(config.SessionConfig{Secret: "test-secret", Issuer: "test", TTL: time.Hour})
	require.NoError(t, err)
	sessions := identityapp.NewSessionManager(
		cache.NewSessionStore(store),
		tokens,
		auth.NewStoreTokenBlacklist(store),
		nil,
		identityapp.SessionManagerConfig{},
		zap.NewNop(),
	)

	f := &fixture{
		backend:  new(MockCartBackend),
		products: new(MockProductLookup),
		sessions: sessions,
		store:    store,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewCartService(f.backend, f.products, sessions, nil, zap.NewNop())
	f.service.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) anonymous(t *testing.T) *identity.Session {
	t.Helper()
	resolved, err := f.sessions.Resolve(context.Background(), "")
	require.NoError(t, err)
	return resolved.Session
}

func (f *fixture) loggedIn(t *testing.T) *identity.Session {
	t.Helper()
	session := f.anonymous(t)
	session.Authenticate(testCred.Phone, testCred.Token, f.now)
	require.NoError(t, f.sessions.Save(context.Background(), session))
	return session
}

func line(id string, price int64, qty int) cart.Item {
	return cart.Item{ProductID: id, ProductName: id, ProductPrice: decimal.NewFromInt(price), Quantity: qty}
}

func TestCartService_GetAnonymous(t *testing.T) {
	f := newFixture(t)

	view, err := f.service.Get(context.Background(), f.anonymous(t))
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Subtotal.IsZero())
	f.backend.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
}

func TestCartService_GetRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	session := f.loggedIn(t)

	stale := line("p1", 1000, 2)
	stale.Total = decimal.NewFromInt(1)
	f.backend.On("GetCart", mock.Anything, testCred).
		Return([]cart.Item{stale, line("p2", 2500, 1), line("p1", 1000, 1)}, nil)

	view, err := f.service.Get(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, int64(3000), view.Items[0].LineTotal().Int64())
	assert.Equal(t, 4, view.Count)
	assert.Equal(t, int64(5500), view.Subtotal.Int64())
	assert.Nil(t, view.AckUntil)
}

func TestCartService_GetResetsOnError(t *testing.T) {
	f := newFixture(t)
	session := f.loggedIn(t)
	f.backend.On("GetCart", mock.Anything, testCred).Return(nil, integration.ErrBackendUnavailable)

	view, err := f.service.Get(context.Background(), session)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.Count)
	assert.True(t, session.IsAuthenticated())
}

func TestCartService_GetUnauthorizedExpiresSession(t *testing.T) {
	f := newFixture(t)
	session := f.loggedIn(t)
	f.backend.On("GetCart", mock.Anything, testCred).Return(nil, integration.ErrBackendUnauthorized)

	view, err := f.service.Get(context.Background(), session)
	assert.ErrorIs(t, err, identity.ErrSessionExpired)
	assert.Empty(t, view.Items)
	assert.False(t, session.IsAuthenticated())

	stored, err := cache.NewSessionStore(f.store).Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, stored.LoggedIn)
	assert.Empty(t, stored.BackendToken)
}

func TestCartService_AddRequiresLogin(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Add(context.Background(), f.anonymous(t), "p1", 1)
	assert.ErrorIs(t, err, identity.ErrLoginRequired)
	f.products.AssertNotCalled(t, "Product", mock.Anything, mock.Anything)
	f.backend.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_AddThenRefetch(t *testing.T) {
	f := newFixture(t)
	session := f.loggedIn(t)

	product := catalog.Product{
		ID:         "p1",
		TitleEn:    "Halal Beef",
		Price:      decimal.NewFromInt(25000),
		FixedPrice: decimal.NewFromInt(22000),
		Weight:     "1000",
		Quantity:   2,
		Images:     []string{"a.jpg"},
	}
	f.products.On("Product", mock.Anything, "p1").Return(product, nil)
	f.backend.On("AddToCart", mock.Anything, testCred, mock.MatchedBy(func(it cart.Item) bool {
		return it.ProductID == "p1" && it.Quantity == 2 && it.ProductPrice.Equal(decimal.NewFromInt(22000))
	})).Return(nil).Once()
	f.backend.On("GetCart", mock.Anything, testCred).Return([]cart.Item{line("p1", 22000, 2)}, nil).Once()

	view, err := f.service.Add(context.Background(), session, "p1", 5)
	require.NoError(t, err)
	require.NotNil(t, view.AckUntil)
	assert.Equal(t, f.now.Add(1500*time.Millisecond), *view.AckUntil)
	assert.Equal(t, int64(44000), view.Subtotal.Int64())
	f.backend.AssertExpectations(t)
}

func TestCartService_AddFailureStillRefetches(t *testing.T) {
	f := newFixture(t)
	session := f.loggedIn(t)

	f.products.On("Product", mock.Anything, "p1").Return(catalog.Product{ID: "p1", Price: decimal.NewFromInt(1000)}, nil)
	f.backend.On("AddToCart", mock.Anything, testCred, mock.Anything).Return(integration.ErrBackendRequestFailed).Once()
	f.backend.On("GetCart", mock.Anything, testCred).Return([]cart.Item{}, nil).Once()

	view, err := f.service.Add(context.Background(), session, "p1", 1)
	require.ErrorIs(t, err, cart.ErrUpdateFailed)
	require.NotNil(t, view.AckUntil)
	assert.Empty(t, view.Items)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, view, domainErr.Details)
	f.backend.AssertExpectations(t)
}

func TestCartService_AddInvalidQuantity(t *testing.T) {
	f := newFixture(t)
	session := f.loggedIn(t)
	f.products.On("Product", mock.Anything, "p1").Return(catalog.Product{ID: "p1"}, nil)

	_, err := f.service.Add(context.Background(), session, "p1", 0)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	f.backend.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_Mutations(t *testing.T) {
	tests := []struct {
		name   string
		method string
		run    func(*CartService, context.Context, *identity.Session, string) (CartView, error)
	}{
		{"increase", "IncreaseCart", (*CartService).Increase},
		{"decrease", "DecreaseCart", (*CartService).Decrease},
		{"delete", "DeleteCart", (*CartService).Delete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			session := f.loggedIn(t)
			f.backend.On(tt.method, mock.Anything, testCred, "p1").Return(nil).Once()
			f.backend.On("GetCart", mock.Anything, testCred).Return([]cart.Item{line("p2", 500, 3)}, nil).Once()

			view, err := tt.run(f.service, context.Background(), session, "p1")
			require.NoError(t, err)
			require.Len(t, view.Items, 1)
			assert.Equal(t, "p2", view.Items[0].ProductID)
			assert.Equal(t, int64(1500), view.Subtotal.Int64())
			f.backend.AssertExpectations(t)
		})
	}
}

func TestCartService_MutationUnauthorizedSkipsRefetch(t *testing.T) {
	f := newFixture(t)
	session := f.loggedIn(t)
	f.backend.On("IncreaseCart", mock.Anything, testCred, "p1").Return(integration.ErrBackendUnauthorized)

	_, err := f.service.Increase(context.Background(), session, "p1")
	assert.ErrorIs(t, err, identity.ErrSessionExpired)
	assert.False(t, session.IsAuthenticated())
	f.backend.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
}

func TestCartService_MutationFailureRefetches(t *testing.T) {
	f := newFixture(t)
	session := f.loggedIn(t)
	f.backend.On("DecreaseCart", mock.Anything, testCred, "p1").Return(integration.ErrBackendUnavailable)
	f.backend.On("GetCart", mock.Anything, testCred).Return([]cart.Item{line("p1", 1000, 2)}, nil).Once()

	view, err := f.service.Decrease(context.Background(), session, "p1")
	require.ErrorIs(t, err, cart.ErrUpdateFailed)
	assert.Equal(t, 2, view.Count)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, view, domainErr.Details)
	f.backend.AssertExpectations(t)
}

func TestCartService_MutationRequiresProductID(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Delete(context.Background(), f.loggedIn(t), " ")
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}
