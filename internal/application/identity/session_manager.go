package identity

import (
	"context"
	"errors"
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/auth"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer signs and validates session cookies
type TokenIssuer interface {
	Issue(sessionID string) (auth.IssuedToken, error)
	Validate(token string) (*auth.Claims, error)
	TTL() time.Duration
}

// ResolvedSession is the session bound to a request
type ResolvedSession struct {
	Session *identity.Session
	// Issued is set when a new cookie must be sent to the browser
	Issued *auth.IssuedToken
	// TokenExpiresAt is when the browser's cookie stops being accepted
	TokenExpiresAt time.Time
}

// SessionManagerConfig contains configuration for the session manager
type SessionManagerConfig struct {
	TTL            time.Duration
	RequireAddress bool
}

// SessionManager binds browsers to server-side sessions
type SessionManager struct {
	store     identity.SessionStore
	tokens    TokenIssuer
	blacklist auth.TokenBlacklist
	events    shared.EventPublisher
	config    SessionManagerConfig
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewSessionManager creates a new session manager
func NewSessionManager(
	store identity.SessionStore,
	tokens TokenIssuer,
	blacklist auth.TokenBlacklist,
	events shared.EventPublisher,
	config SessionManagerConfig,
	logger *zap.Logger,
) *SessionManager {
	if config.TTL <= 0 {
		config.TTL = tokens.TTL()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		store:     store,
		tokens:    tokens,
		blacklist: blacklist,
		events:    events,
		config:    config,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Resolve returns the session for a cookie value. A missing, invalid,
// revoked or orphaned cookie yields a fresh anonymous session together
// with the cookie that binds it.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*ResolvedSession, error) {
	if token == "" {
		return m.create(ctx)
	}

	claims, err := m.tokens.Validate(token)
	if err != nil {
		m.logger.Debug("Discarding session cookie", zap.Error(err))
		return m.create(ctx)
	}

	revoked, err := m.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		m.logger.Debug("Revoked session cookie presented", zap.String("session_id", claims.SessionID()))
		return m.create(ctx)
	}

	session, err := m.store.Get(ctx, claims.SessionID())
	if errors.Is(err, identity.ErrSessionNotFound) {
		return m.create(ctx)
	}
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedSession{Session: session}
	if claims.ExpiresAt != nil {
		resolved.TokenExpiresAt = claims.ExpiresAt.Time
	}
	return resolved, nil
}

func (m *SessionManager) create(ctx context.Context) (*ResolvedSession, error) {
	session := identity.NewSession(m.newID(), m.config.RequireAddress, m.now())
	issued, err := m.tokens.Issue(session.ID)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, session, m.config.TTL); err != nil {
		return nil, err
	}
	return &ResolvedSession{Session: session, Issued: &issued, TokenExpiresAt: issued.ExpiresAt}, nil
}

// Save persists session. Concurrent writers overwrite each other.
func (m *SessionManager) Save(ctx context.Context, session *identity.Session) error {
	session.Touch(m.now())
	if err := m.store.Save(ctx, session, m.config.TTL); err != nil {
		m.log(ctx).Error("Failed to save session",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return err
	}
	return nil
}

// Invalidate logs the session out while keeping its cookie
func (m *SessionManager) Invalidate(ctx context.Context, session *identity.Session, reason string) error {
	session.Invalidate(m.now())
	if err := m.Save(ctx, session); err != nil {
		return err
	}
	m.publish(ctx, identity.NewSessionInvalidatedEvent(session.ID, reason))
	return nil
}

// HandleBackendError logs the session out when the backend rejected its
// credential and reports ErrSessionExpired. Other errors pass through.
func (m *SessionManager) HandleBackendError(ctx context.Context, session *identity.Session, err error) error {
	if !integration.IsUnauthorized(err) {
		return err
	}
	m.log(ctx).Info("Backend rejected session credential",
		zap.String("session_id", session.ID))
	if invErr := m.Invalidate(ctx, session, identity.InvalidationReasonUnauthorized); invErr != nil {
		m.log(ctx).Warn("Failed to invalidate session", zap.Error(invErr))
	}
	return identity.ErrSessionExpired
}

// Revoke deletes the session and blacklists its cookie until the cookie
// would have expired
func (m *SessionManager) Revoke(ctx context.Context, session *identity.Session, tokenExpiresAt time.Time) error {
	if err := m.store.Delete(ctx, session.ID); err != nil {
		return err
	}
	if remaining := tokenExpiresAt.Sub(m.now()); remaining > 0 {
		if err := m.blacklist.AddToBlacklist(ctx, session.ID, remaining); err != nil {
			return err
		}
	}
	m.publish(ctx, identity.NewSessionInvalidatedEvent(session.ID, identity.InvalidationReasonLogout))
	return nil
}

func (m *SessionManager) publish(ctx context.Context, events ...shared.DomainEvent) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(ctx, events...); err != nil {
		m.log(ctx).Warn("Failed to publish events", zap.Error(err))
	}
}

func (m *SessionManager) log(ctx context.Context) *zap.Logger {
	return logger.WithLogger(ctx, m.logger)
}
