package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AccountService serves the profile and order history of a logged-in
// shopper
type AccountService struct {
	backend  integration.AccountBackend
	sessions *SessionManager
	location *time.Location
	logger   *zap.Logger
}

// NewAccountService creates a new account service. location is the zone
// order dates are written in.
func NewAccountService(
	backend integration.AccountBackend,
	sessions *SessionManager,
	location *time.Location,
	logger *zap.Logger,
) *AccountService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		backend:  backend,
		sessions: sessions,
		location: location,
		logger:   logger,
	}
}

// Profile fetches the profile from the backend and caches it on the session
func (s *AccountService) Profile(ctx context.Context, session *identity.Session) (identity.UserProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "AccountService", "Profile")
	defer span.End()

	if !session.IsAuthenticated() {
		return identity.UserProfile{}, identity.ErrLoginRequired
	}

	profile, err := s.backend.GetUser(ctx, integration.SessionCredential(session))
	if err != nil {
		telemetry.RecordError(span, err)
		return identity.UserProfile{}, s.backendError(ctx, session, "Failed to load profile", err)
	}
	s.remember(ctx, session, profile)
	return profile, nil
}

// CachedProfile returns the profile cached on the session, loading it when
// there is none. Backend failures fall back to what the session knows.
func (s *AccountService) CachedProfile(ctx context.Context, session *identity.Session) (identity.UserProfile, error) {
	if session.Profile != nil {
		return *session.Profile, nil
	}
	profile, err := s.Profile(ctx, session)
	if err != nil {
		if errors.Is(err, identity.ErrSessionExpired) || errors.Is(err, identity.ErrLoginRequired) {
			return identity.UserProfile{}, err
		}
		return identity.UserProfile{Phone: session.Phone}, nil
	}
	return profile, nil
}

// UpdateProfile saves name and address
func (s *AccountService) UpdateProfile(ctx context.Context, session *identity.Session, in ProfileInput) (identity.UserProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "AccountService", "UpdateProfile")
	defer span.End()

	if !session.IsAuthenticated() {
		return identity.UserProfile{}, identity.ErrLoginRequired
	}
	if strings.TrimSpace(in.Name) == "" {
		return identity.UserProfile{}, identity.ErrProfileIncomplete
	}

	profile, err := s.backend.UpdateUser(ctx, integration.SessionCredential(session), identity.UserProfile{
		Name:          strings.TrimSpace(in.Name),
		Phone:         session.Phone,
		Address:       strings.TrimSpace(in.Address),
		DetailAddress: strings.TrimSpace(in.DetailAddress),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return identity.UserProfile{}, s.backendError(ctx, session, "Failed to update profile", err)
	}
	s.remember(ctx, session, profile)
	return profile, nil
}

// Orders lists past orders, newest first
func (s *AccountService) Orders(ctx context.Context, session *identity.Session) ([]OrderView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "AccountService", "Orders")
	defer span.End()

	if !session.IsAuthenticated() {
		return nil, identity.ErrLoginRequired
	}

	orders, err := s.backend.GetOrders(ctx, integration.SessionCredential(session))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.backendError(ctx, session, "Failed to load orders", err)
	}

	order.SortNewestFirst(orders, s.location)
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, NewOrderView(o))
	}
	return views, nil
}

func (s *AccountService) remember(ctx context.Context, session *identity.Session, profile identity.UserProfile) {
	session.Profile = &profile
	if err := s.sessions.Save(ctx, session); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Failed to cache profile", zap.Error(err))
	}
}

func (s *AccountService) backendError(ctx context.Context, session *identity.Session, msg string, err error) error {
	if integration.IsUnauthorized(err) {
		return s.sessions.HandleBackendError(ctx, session, err)
	}
	logger.WithLogger(ctx, s.logger).Warn(msg, zap.Error(err))
	return err
}
