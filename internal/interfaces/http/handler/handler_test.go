package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cartapp "github.com/albazaar/storefront/internal/application/cart"
	catalogapp "github.com/albazaar/storefront/internal/application/catalog"
	checkoutapp "github.com/albazaar/storefront/internal/application/checkout"
	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/catalog"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/infrastructure/auth"
	"github.com/albazaar/storefront/internal/infrastructure/cache"
	"github.com/albazaar/storefront/internal/infrastructure/config"
	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/albazaar/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var testCred = integration.Credential{Phone: "01012345678", Token: "backend-token"}

// MockStoreBackend is a mock of the whole store backend
type MockStoreBackend struct {
	mock.Mock
}

var _ integration.StoreBackend = (*MockStoreBackend)(nil)

func (m *MockStoreBackend) RequestOTP(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}

func (m *MockStoreBackend) VerifyOTP(ctx context.Context, phone, code string) (integration.Verification, error) {
	args := m.Called(ctx, phone, code)
	return args.Get(0).(integration.Verification), args.Error(1)
}

func (m *MockStoreBackend) UpdateAddress(ctx context.Context, cred integration.Credential, update integration.AddressUpdate) error {
	return m.Called(ctx, cred, update).Error(0)
}

func (m *MockStoreBackend) GetUser(ctx context.Context, cred integration.Credential) (identity.UserProfile, error) {
	args := m.Called(ctx, cred)
	return args.Get(0).(identity.UserProfile), args.Error(1)
}

func (m *MockStoreBackend) UpdateUser(ctx context.Context, cred integration.Credential, profile identity.UserProfile) (identity.UserProfile, error) {
	args := m.Called(ctx, cred, profile)
	return args.Get(0).(identity.UserProfile), args.Error(1)
}

func (m *MockStoreBackend) GetOrders(ctx context.Context, cred integration.Credential) ([]order.Order, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockStoreBackend) GetCart(ctx context.Context, cred integration.Credential) ([]cart.Item, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Item), args.Error(1)
}

func (m *MockStoreBackend) AddToCart(ctx context.Context, cred integration.Credential, item cart.Item) error {
	return m.Called(ctx, cred, item).Error(0)
}

func (m *MockStoreBackend) IncreaseCart(ctx context.Context, cred integration.Credential, productID string) error {
	return m.Called(ctx, cred, productID).Error(0)
}

func (m *MockStoreBackend) DecreaseCart(ctx context.Context, cred integration.Credential, productID string) error {
	return m.Called(ctx, cred, productID).Error(0)
}

func (m *MockStoreBackend) DeleteCart(ctx context.Context, cred integration.Credential, productID string) error {
	return m.Called(ctx, cred, productID).Error(0)
}

func (m *MockStoreBackend) CreateOrder(ctx context.Context, cred integration.Credential, req order.PlaceOrderRequest) error {
	return m.Called(ctx, cred, req).Error(0)
}

func (m *MockStoreBackend) SendConfirmation(ctx context.Context, cred integration.Credential, phone string, total int64) error {
	return m.Called(ctx, cred, phone, total).Error(0)
}

func (m *MockStoreBackend) Categories(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockStoreBackend) CategoryTree(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockStoreBackend) Products(ctx context.Context, query catalog.ProductQuery) ([]catalog.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockStoreBackend) Product(ctx context.Context, id string) (catalog.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func (m *MockStoreBackend) Specials(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

var testCookie = middleware.SessionCookie{Name: "albazaar_session", Path: "/", SameSite: http.SameSiteLaxMode}

// testEnv runs the handlers behind the session middleware against a mocked
// backend, keeping one browser's cookie between requests
type testEnv struct {
	backend  *MockStoreBackend
	store    *cache.InMemoryStore
	tokens   *auth.JWTService
	sessions *identityapp.SessionManager
	auth     *AuthHandler
	router   *gin.Engine
	cookie   *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewJWTService(config.SessionConfig{
		Secret: "test-secret",
		Issuer: "albazaar-storefront",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	backend := new(MockStoreBackend)
	sessions := identityapp.NewSessionManager(
		cache.NewSessionStore(store),
		tokens,
		auth.NewStoreTokenBlacklist(store),
		nil,
		identityapp.SessionManagerConfig{},
		zap.NewNop(),
	)

	login := identityapp.NewLoginService(backend, sessions, nil, zap.NewNop())
	accounts := identityapp.NewAccountService(backend, sessions, time.UTC, zap.NewNop())
	catalogs := catalogapp.NewCatalogService(backend, cache.NewCatalogCache(store, time.Minute, false, nil), zap.NewNop())
	carts := cartapp.NewCartService(backend, catalogs, sessions, nil, zap.NewNop())
	checkouts := checkoutapp.NewCheckoutService(checkoutapp.CheckoutServiceConfig{
		Carts:    carts,
		Profiles: accounts,
		Orders:   backend,
		Accounts: backend,
		Sessions: sessions,
		Journals: cache.NewJournalStore(store),
		Guard:    store,
		Policy:   order.DefaultShippingPolicy(),
		Logger:   zap.NewNop(),
	})

	env := &testEnv{
		backend:  backend,
		store:    store,
		tokens:   tokens,
		sessions: sessions,
		auth:     NewAuthHandler(login, testCookie, nil),
	}

	sessionHandler := NewSessionHandler(login, carts)
	accountHandler := NewAccountHandler(accounts)
	cartHandler := NewCartHandler(carts)
	checkoutHandler := NewCheckoutHandler(checkouts)
	catalogHandler := NewCatalogHandler(catalogs)
	healthHandler := NewHealthHandler("albazaar-storefront", "test", store, nil)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Session(middleware.SessionMiddlewareConfig{
		Resolver:  sessions,
		Cookie:    testCookie,
		SkipPaths: []string{"/health", "/health/ready"},
	}))
	r.GET("/health", healthHandler.Live)
	r.GET("/health/ready", healthHandler.Ready)

	api := r.Group("/api/v1")
	api.GET("/session", sessionHandler.Status)

	authGroup := api.Group("/auth")
	authGroup.POST("/phone", env.auth.RequestOTP)
	authGroup.PATCH("/otp/keys", env.auth.OTPKey)
	authGroup.GET("/otp/countdown", env.auth.Countdown)
	authGroup.POST("/otp/verify", env.auth.VerifyOTP)
	authGroup.POST("/address", env.auth.SubmitAddress)
	authGroup.POST("/logout", env.auth.Logout)

	account := api.Group("/account", middleware.RequireLogin())
	account.GET("/profile", accountHandler.GetProfile)
	account.PUT("/profile", accountHandler.UpdateProfile)
	account.GET("/orders", accountHandler.ListOrders)

	cartGroup := api.Group("/cart", middleware.RequireLogin())
	cartGroup.GET("", cartHandler.GetCart)
	cartGroup.POST("/items", cartHandler.AddItem)
	cartGroup.PATCH("/items/:id/increase", cartHandler.IncreaseItem)
	cartGroup.PATCH("/items/:id/decrease", cartHandler.DecreaseItem)
	cartGroup.DELETE("/items/:id", cartHandler.DeleteItem)

	checkoutGroup := api.Group("/checkout", middleware.RequireLogin())
	checkoutGroup.GET("/quote", checkoutHandler.Quote)
	checkoutGroup.POST("", checkoutHandler.Submit)
	checkoutGroup.GET("/:id", checkoutHandler.GetJournal)

	catalogGroup := api.Group("/catalog")
	catalogGroup.GET("/categories", catalogHandler.ListCategories)
	catalogGroup.GET("/subcategories", catalogHandler.ListSubcategories)
	catalogGroup.GET("/products", catalogHandler.ListProducts)
	catalogGroup.GET("/products/:id", catalogHandler.GetProduct)
	catalogGroup.GET("/specials", catalogHandler.ListSpecials)

	env.router = r
	return env
}

// do sends a request as the env's browser and keeps any cookie it is given
func (e *testEnv) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name != testCookie.Name {
			continue
		}
		if c.MaxAge < 0 || c.Value == "" {
			e.cookie = nil
		} else {
			e.cookie = c
		}
	}
	return w
}

func newCookieRequest(t *testing.T, e *testEnv, method, path string) *http.Request {
	t.Helper()
	require.NotNil(t, e.cookie)
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(e.cookie)
	return req
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// session returns the stored session of the env's browser
func (e *testEnv) session(t *testing.T) *identity.Session {
	t.Helper()
	if e.cookie == nil {
		e.do(http.MethodGet, "/api/v1/session", nil)
	}
	require.NotNil(t, e.cookie)

	claims, err := e.tokens.Validate(e.cookie.Value)
	require.NoError(t, err)
	session, err := cache.NewSessionStore(e.store).Get(context.Background(), claims.SessionID())
	require.NoError(t, err)
	return session
}

// login marks the env's browser as logged in with testCred
func (e *testEnv) login(t *testing.T) *identity.Session {
	t.Helper()
	session := e.session(t)
	session.Authenticate(testCred.Phone, testCred.Token, time.Now())
	session.Login.Step = identity.LoginStepDone
	require.NoError(t, e.sessions.Save(context.Background(), session))
	return session
}

// envelope is dto.Response with a typed payload
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func sampleProduct() catalog.Product {
	return catalog.Product{
		ID:       "p1",
		TitleEn:  "Halal Beef",
		Price:    decimal.NewFromInt(22000),
		Quantity: 10,
		Images:   []string{"beef.jpg"},
	}
}

func sampleItems() []cart.Item {
	return []cart.Item{
		{ProductID: "p1", ProductName: "Halal Beef", ProductPrice: decimal.NewFromInt(22000), Quantity: 2, Total: decimal.NewFromInt(44000)},
		{ProductID: "p2", ProductName: "Dates", ProductPrice: decimal.NewFromInt(8000), Quantity: 1, Total: decimal.NewFromInt(8000)},
	}
}
