package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/cache"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Defaults applied when the configuration leaves them unset
const (
	DefaultGuardTTL   = 2 * time.Minute
	DefaultJournalTTL = 24 * time.Hour
)

// CartSource loads the canonical cart of a logged-in session
type CartSource interface {
	Fetch(ctx context.Context, session *identity.Session) (*cart.Cart, error)
}

// ProfileSource returns the profile used to prefill the form
type ProfileSource interface {
	CachedProfile(ctx context.Context, session *identity.Session) (identity.UserProfile, error)
}

// SubmitGuard is the set-if-absent store behind the per-session submitting
// flag
type SubmitGuard interface {
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// CheckoutServiceConfig holds the collaborators of the checkout service
type CheckoutServiceConfig struct {
	Carts      CartSource
	Profiles   ProfileSource
	Orders     integration.OrderBackend
	Accounts   integration.AccountBackend
	Sessions   *identityapp.SessionManager
	Journals   order.JournalStore
	Guard      SubmitGuard
	Events     shared.EventPublisher
	Policy     order.ShippingPolicy
	GuardTTL   time.Duration
	JournalTTL time.Duration
	// Location is the zone order dates are written in
	Location *time.Location
	Metrics  *telemetry.StorefrontMetrics
	Logger   *zap.Logger
}

// CheckoutService places orders. A submission runs create order, send
// confirmation, optional profile save and cart refresh in sequence; every
// completed step is journaled so a retry with the same checkout ID resumes
// where the last attempt stopped.
type CheckoutService struct {
	carts      CartSource
	profiles   ProfileSource
	orders     integration.OrderBackend
	accounts   integration.AccountBackend
	sessions   *identityapp.SessionManager
	journals   order.JournalStore
	guard      SubmitGuard
	events     shared.EventPublisher
	policy     order.ShippingPolicy
	guardTTL   time.Duration
	journalTTL time.Duration
	location   *time.Location
	metrics    *telemetry.StorefrontMetrics
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(config CheckoutServiceConfig) *CheckoutService {
	if config.GuardTTL <= 0 {
		config.GuardTTL = DefaultGuardTTL
	}
	if config.JournalTTL <= 0 {
		config.JournalTTL = DefaultJournalTTL
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &CheckoutService{
		carts:      config.Carts,
		profiles:   config.Profiles,
		orders:     config.Orders,
		accounts:   config.Accounts,
		sessions:   config.Sessions,
		journals:   config.Journals,
		guard:      config.Guard,
		events:     config.Events,
		policy:     config.Policy,
		guardTTL:   config.GuardTTL,
		journalTTL: config.JournalTTL,
		location:   config.Location,
		metrics:    config.Metrics,
		logger:     config.Logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Quote prices the current cart for tier and prefills the delivery form
// from the saved profile
func (s *CheckoutService) Quote(ctx context.Context, session *identity.Session, rawTier string) (QuoteView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CheckoutService", "Quote")
	defer span.End()

	if !session.IsAuthenticated() {
		return QuoteView{}, identity.ErrLoginRequired
	}
	tier, err := order.ParseShippingTier(rawTier)
	if err != nil {
		return QuoteView{}, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrShippingTier, string(tier))

	c, err := s.carts.Fetch(ctx, session)
	if err != nil {
		telemetry.RecordError(span, err)
		return QuoteView{}, err
	}

	profile, err := s.profiles.CachedProfile(ctx, session)
	if err != nil {
		return QuoteView{}, err
	}
	form := order.PrefillCheckoutForm(profile)
	form.Tier = tier

	return QuoteView{
		Form:  form,
		Items: c.Items(),
		Count: c.Count(),
		Quote: s.policy.Quote(c.Subtotal(), tier),
	}, nil
}

// Submit places the order described by form. An empty checkoutID starts a
// new attempt; a known one resumes it.
func (s *CheckoutService) Submit(ctx context.Context, session *identity.Session, form order.CheckoutForm, checkoutID string) (Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CheckoutService", "Submit")
	defer span.End()

	if !session.IsAuthenticated() {
		return Result{}, identity.ErrLoginRequired
	}

	tier, err := order.ParseShippingTier(string(form.Tier))
	if err != nil {
		return Result{}, err
	}
	form.Tier = tier

	if err := form.Validate(s.now()); err != nil {
		s.metrics.RecordCheckout(ctx, telemetry.ResultInvalid, string(tier))
		return Result{}, err
	}

	checkoutID = strings.TrimSpace(checkoutID)
	if checkoutID == "" {
		checkoutID = s.newID()
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCheckoutID, checkoutID,
		telemetry.SpanAttrShippingTier, string(tier))

	journal, err := s.lookup(ctx, session, checkoutID)
	if err != nil {
		return Result{}, err
	}
	if journal != nil && journal.Completed {
		return NewResult(journal), nil
	}

	guardKey := cache.GuardKeyPrefix + session.ID
	acquired, err := s.guard.MarkProcessed(ctx, guardKey, s.guardTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Error("Failed to set checkout guard", zap.Error(err))
		return Result{}, err
	}
	if !acquired {
		s.metrics.RecordCheckout(ctx, telemetry.ResultInProgress, string(tier))
		return Result{}, order.ErrCheckoutInProgress
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), guardKey); err != nil {
			s.log(ctx).Warn("Failed to clear checkout guard", zap.Error(err))
		}
	}()

	if journal == nil {
		journal, err = s.begin(ctx, session, form, checkoutID)
		if err != nil {
			telemetry.RecordError(span, err)
			return Result{}, err
		}
	}

	if err := s.run(ctx, session, journal); err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordCheckout(ctx, telemetry.ResultError, string(journal.Tier))
		return Result{CheckoutID: checkoutID, Journal: journal}, err
	}

	s.metrics.RecordCheckout(ctx, telemetry.ResultSuccess, string(journal.Tier))
	s.log(ctx).Info("Checkout completed",
		zap.String("checkout_id", checkoutID),
		zap.Int64("total", journal.Total().Int64()))
	return NewResult(journal), nil
}

// GetJournal returns the progress of a checkout owned by session
func (s *CheckoutService) GetJournal(ctx context.Context, session *identity.Session, checkoutID string) (*order.Journal, error) {
	if !session.IsAuthenticated() {
		return nil, identity.ErrLoginRequired
	}
	journal, err := s.lookup(ctx, session, strings.TrimSpace(checkoutID))
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, order.ErrCheckoutNotFound
	}
	return journal, nil
}

// lookup loads a journal. A missing journal is not an error; a journal
// started by another session is reported as not found.
func (s *CheckoutService) lookup(ctx context.Context, session *identity.Session, checkoutID string) (*order.Journal, error) {
	if checkoutID == "" {
		return nil, order.ErrCheckoutNotFound
	}
	journal, err := s.journals.Get(ctx, checkoutID)
	if errors.Is(err, order.ErrCheckoutNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if journal.SessionID != session.ID {
		return nil, order.ErrCheckoutNotFound
	}
	return journal, nil
}

// begin snapshots the cart into a new journal
func (s *CheckoutService) begin(ctx context.Context, session *identity.Session, form order.CheckoutForm, checkoutID string) (*order.Journal, error) {
	c, err := s.carts.Fetch(ctx, session)
	if err != nil {
		if errors.Is(err, identity.ErrSessionExpired) {
			return nil, err
		}
		s.log(ctx).Warn("Failed to load cart for checkout", zap.Error(err))
		return nil, order.ErrCheckoutFailed
	}
	if c.IsEmpty() {
		s.metrics.RecordCheckout(ctx, telemetry.ResultEmpty, string(form.Tier))
		return nil, cart.ErrCartEmpty
	}

	now := s.now()
	quote := s.policy.Quote(c.Subtotal(), form.Tier)
	req := order.NewPlaceOrderRequest(session.Phone, form, c.Items(), quote, now.In(s.location))

	journal := order.NewJournal(checkoutID, session.ID, form.SaveInfo, now)
	journal.Order = &req
	journal.Tier = form.Tier
	if err := s.journals.Save(ctx, journal, s.journalTTL); err != nil {
		s.log(ctx).Error("Failed to save checkout journal", zap.String("checkout_id", checkoutID), zap.Error(err))
		return nil, err
	}
	return journal, nil
}

// run executes the pending steps in order and stops at the first failure
func (s *CheckoutService) run(ctx context.Context, session *identity.Session, journal *order.Journal) error {
	for {
		step, ok := journal.Next()
		if !ok {
			return nil
		}

		started := s.now()
		err := s.runStep(ctx, session, journal, step)
		s.metrics.RecordCheckoutStep(ctx, string(step), s.now().Sub(started), err)

		if err != nil {
			journal.MarkFailed(fmt.Sprintf("%s: %v", step, err), s.now())
			s.save(ctx, journal)
			s.log(ctx).Warn("Checkout step failed",
				zap.String("checkout_id", journal.CheckoutID),
				zap.String("step", string(step)),
				zap.Error(err))
			if integration.IsUnauthorized(err) {
				return s.sessions.HandleBackendError(ctx, session, err)
			}
			if errors.Is(err, identity.ErrSessionExpired) {
				return err
			}
			return order.ErrCheckoutFailed.WithDetails(FailureDetails{CheckoutID: journal.CheckoutID})
		}

		journal.MarkDone(step, s.now())
		s.save(ctx, journal)
		if step == order.StepCreateOrder {
			s.publish(ctx, order.NewOrderPlacedEvent(journal.CheckoutID, *journal.Order, journal.Tier))
		}
	}
}

func (s *CheckoutService) runStep(ctx context.Context, session *identity.Session, journal *order.Journal, step order.Step) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "CheckoutService", string(step),
		telemetry.WithAttribute(telemetry.SpanAttrCheckoutStep, string(step)))
	defer span.End()

	cred := integration.SessionCredential(session)
	req := journal.Order

	var err error
	switch step {
	case order.StepCreateOrder:
		err = s.orders.CreateOrder(ctx, cred, *req)
	case order.StepSendConfirmation:
		err = s.orders.SendConfirmation(ctx, cred, req.UserID, req.Total)
	case order.StepSaveInfo:
		err = s.saveInfo(ctx, session, cred, req)
	case order.StepRefreshCart:
		_, err = s.carts.Fetch(ctx, session)
	default:
		err = fmt.Errorf("checkout: unknown step %q", step)
	}
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// saveInfo writes the receiver details back to the profile
func (s *CheckoutService) saveInfo(ctx context.Context, session *identity.Session, cred integration.Credential, req *order.PlaceOrderRequest) error {
	profile, err := s.accounts.UpdateUser(ctx, cred, identity.UserProfile{
		Name:    req.ReceiverName,
		Phone:   req.ReceiverPhone,
		Address: req.AddressData.Address,
	})
	if err != nil {
		return err
	}
	session.Profile = &profile
	if err := s.sessions.Save(ctx, session); err != nil {
		s.log(ctx).Warn("Failed to cache saved profile", zap.Error(err))
	}
	return nil
}

// save persists journal progress
func (s *CheckoutService) save(ctx context.Context, journal *order.Journal) {
	if err := s.journals.Save(context.WithoutCancel(ctx), journal, s.journalTTL); err != nil {
		s.log(ctx).Error("Failed to save checkout journal",
			zap.String("checkout_id", journal.CheckoutID),
			zap.Error(err))
	}
}

func (s *CheckoutService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.log(ctx).Warn("Failed to publish events", zap.Error(err))
	}
}

func (s *CheckoutService) log(ctx context.Context) *zap.Logger {
	return logger.WithLogger(ctx, s.logger)
}
