package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/auth"
	"github.com/albazaar/storefront/internal/infrastructure/cache"
	"github.com/albazaar/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockBackend is a mock of the auth and account backend ports
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) RequestOTP(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}

func (m *MockBackend) VerifyOTP(ctx context.Context, phone, code string) (integration.Verification, error) {
	args := m.Called(ctx, phone, code)
	return args.Get(0).(integration.Verification), args.Error(1)
}

func (m *MockBackend) UpdateAddress(ctx context.Context, cred integration.Credential, update integration.AddressUpdate) error {
	return m.Called(ctx, cred, update).Error(0)
}

func (m *MockBackend) GetUser(ctx context.Context, cred integration.Credential) (identity.UserProfile, error) {
	args := m.Called(ctx, cred)
	return args.Get(0).(identity.UserProfile), args.Error(1)
}

func (m *MockBackend) UpdateUser(ctx context.Context, cred integration.Credential, profile identity.UserProfile) (identity.UserProfile, error) {
	args := m.Called(ctx, cred, profile)
	return args.Get(0).(identity.UserProfile), args.Error(1)
}

func (m *MockBackend) GetOrders(ctx context.Context, cred integration.Credential) ([]order.Order, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store    *cache.InMemoryStore
	sessions *SessionManager
	tokens   *auth.JWTService
	events   *recordingPublisher
	clock    *fakeClock
	backend  *MockBackend
}

func newFixture(t *testing.T, requireAddress bool) *fixture {
	t.Helper()

	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewJWTService(config.SessionConfig{
		Secret: "test-secret",
		Issuer: "albazaar-storefront",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	clock := &fakeClock{now: time.Now()}
	events := &recordingPublisher{}
	sessions := NewSessionManager(
		cache.NewSessionStore(store),
		tokens,
		auth.NewStoreTokenBlacklist(store),
		events,
		SessionManagerConfig{RequireAddress: requireAddress},
		zap.NewNop(),
	)
	sessions.now = clock.Now

	return &fixture{
		store:    store,
		sessions: sessions,
		tokens:   tokens,
		events:   events,
		clock:    clock,
		backend:  new(MockBackend),
	}
}

func (f *fixture) newSession(t *testing.T) *ResolvedSession {
	t.Helper()
	resolved, err := f.sessions.Resolve(context.Background(), "")
	require.NoError(t, err)
	return resolved
}

func (f *fixture) loggedIn(t *testing.T) *identity.Session {
	t.Helper()
	session := f.newSession(t).Session
	session.Authenticate("01012345678", "backend-token", f.clock.Now())
	session.Login.Step = identity.LoginStepDone
	require.NoError(t, f.sessions.Save(context.Background(), session))
	return session
}

func (f *fixture) stored(t *testing.T, id string) *identity.Session {
	t.Helper()
	session, err := cache.NewSessionStore(f.store).Get(context.Background(), id)
	require.NoError(t, err)
	return session
}
