package identity

import (
	"context"
	"errors"
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LoginService drives the phone -> otp -> address -> done flow. Every
// failure keeps the shopper on the current step with a message; nothing is
// retried automatically.
type LoginService struct {
	backend  integration.AuthBackend
	sessions *SessionManager
	metrics  *telemetry.StorefrontMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewLoginService creates a new login service
func NewLoginService(
	backend integration.AuthBackend,
	sessions *SessionManager,
	metrics *telemetry.StorefrontMetrics,
	logger *zap.Logger,
) *LoginService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginService{
		backend:  backend,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Status renders the login state of session
func (s *LoginService) Status(session *identity.Session) LoginView {
	return NewLoginView(session, s.now())
}

// RequestOTP stores the phone and asks the backend to text a code
func (s *LoginService) RequestOTP(ctx context.Context, session *identity.Session, rawPhone string) (LoginView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LoginService", "RequestOTP")
	defer span.End()

	now := s.now()
	flow, err := session.Login.SetPhone(rawPhone, now)
	if err != nil {
		s.metrics.RecordOTPRequest(ctx, telemetry.ResultRejected)
		return s.Status(session), err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPhone, identity.MaskPhone(flow.Phone))

	if err := identity.ValidatePhone(flow.Phone); err != nil {
		s.metrics.RecordOTPRequest(ctx, telemetry.ResultInvalid)
		return s.fail(ctx, session, flow, identity.ErrInvalidPhone)
	}

	if err := s.backend.RequestOTP(ctx, flow.Phone); err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("OTP request failed",
			zap.String("phone", identity.MaskPhone(flow.Phone)),
			zap.Error(err))
		if errors.Is(err, integration.ErrBackendRejected) {
			s.metrics.RecordOTPRequest(ctx, telemetry.ResultRejected)
			return s.fail(ctx, session, flow, identity.ErrOTPNotSent)
		}
		s.metrics.RecordOTPRequest(ctx, telemetry.ResultError)
		return s.fail(ctx, session, flow, identity.ErrOTPRequestFailed)
	}

	session.Login = flow.OTPRequested(now)
	if err := s.sessions.Save(ctx, session); err != nil {
		return s.Status(session), err
	}
	s.metrics.RecordOTPRequest(ctx, telemetry.ResultSuccess)
	s.log(ctx).Info("OTP sent", zap.String("phone", identity.MaskPhone(flow.Phone)))
	return s.Status(session), nil
}

// KeyEvent applies one key press to the OTP boxes. Backspace clears or
// moves focus back; any other key is typed into the box.
func (s *LoginService) KeyEvent(ctx context.Context, session *identity.Session, in KeyInput) (LoginView, error) {
	var (
		flow identity.LoginFlow
		err  error
	)
	if in.Key == BackspaceKey {
		flow, err = session.Login.BackspaceOTP(in.Index)
	} else {
		flow, err = session.Login.EnterOTP(in.Index, in.Key)
	}
	if err != nil {
		return s.Status(session), err
	}

	session.Login = flow
	if err := s.sessions.Save(ctx, session); err != nil {
		return s.Status(session), err
	}
	return s.Status(session), nil
}

// Verify checks the code with the backend. An empty code verifies what was
// typed into the boxes.
func (s *LoginService) Verify(ctx context.Context, session *identity.Session, code string) (LoginView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LoginService", "Verify")
	defer span.End()

	flow := session.Login
	if flow.Step != identity.LoginStepOTP {
		return s.Status(session), identity.ErrInvalidLoginStep
	}
	if code != "" {
		flow.OTP = identity.OTPInputFromCode(code)
	}
	if !flow.OTP.Complete() {
		s.metrics.RecordOTPVerification(ctx, telemetry.ResultInvalid)
		return s.Status(session), identity.ErrOTPIncomplete
	}

	phone := flow.Phone
	verification, err := s.backend.VerifyOTP(ctx, phone, flow.OTP.Code())
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("OTP verification failed",
			zap.String("phone", identity.MaskPhone(phone)),
			zap.Error(err))
		s.metrics.RecordOTPVerification(ctx, telemetry.ResultError)
		return s.fail(ctx, session, flow, identity.ErrOTPVerifyFailed)
	}
	if !verification.Activated {
		s.metrics.RecordOTPVerification(ctx, telemetry.ResultRejected)
		return s.fail(ctx, session, flow, identity.ErrOTPRejected)
	}

	saved := identity.UserProfile{Phone: phone, Address: verification.Address}
	flow, err = flow.Verified(saved.HasAddress())
	if err != nil {
		return s.Status(session), err
	}
	session.Authenticate(phone, verification.Token, s.now())
	session.Login = flow
	if err := s.sessions.Save(ctx, session); err != nil {
		return s.Status(session), err
	}

	s.metrics.RecordOTPVerification(ctx, telemetry.ResultSuccess)
	telemetry.SetAttributes(span, telemetry.SpanAttrLoginStep, flow.Step.String())
	if flow.Done() {
		s.sessions.publish(ctx, identity.NewLoginCompletedEvent(session.ID, phone, false))
	}
	return s.Status(session), nil
}

// SubmitAddress saves the delivery address captured at first login
func (s *LoginService) SubmitAddress(ctx context.Context, session *identity.Session, form identity.AddressForm) (LoginView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "LoginService", "SubmitAddress")
	defer span.End()

	flow := session.Login
	if flow.Step != identity.LoginStepAddress || !session.IsAuthenticated() {
		return s.Status(session), identity.ErrInvalidLoginStep
	}
	if err := form.Validate(); err != nil {
		return s.Status(session), err
	}

	cred := integration.SessionCredential(session)
	err := s.backend.UpdateAddress(ctx, cred, integration.AddressUpdate{
		ReceiverName:    form.ReceiverName,
		Address:         form.Address,
		DetailedAddress: form.DetailAddress,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if integration.IsUnauthorized(err) {
			return s.Status(session), s.sessions.HandleBackendError(ctx, session, err)
		}
		s.log(ctx).Warn("Address update failed", zap.Error(err))
		return s.fail(ctx, session, flow, identity.ErrAddressUpdateFailed)
	}

	flow, err = flow.AddressSaved()
	if err != nil {
		return s.Status(session), err
	}
	session.Login = flow
	session.Profile = nil
	if err := s.sessions.Save(ctx, session); err != nil {
		return s.Status(session), err
	}
	s.sessions.publish(ctx, identity.NewLoginCompletedEvent(session.ID, session.Phone, true))
	return s.Status(session), nil
}

// Logout deletes the session and revokes its cookie
func (s *LoginService) Logout(ctx context.Context, resolved *ResolvedSession) error {
	if err := s.sessions.Revoke(ctx, resolved.Session, resolved.TokenExpiresAt); err != nil {
		s.log(ctx).Error("Logout failed", zap.Error(err))
		return err
	}
	return nil
}

// fail records cause on the current step and returns it
func (s *LoginService) fail(ctx context.Context, session *identity.Session, flow identity.LoginFlow, cause *shared.DomainError) (LoginView, error) {
	session.Login = flow.Fail(cause.Message)
	if err := s.sessions.Save(ctx, session); err != nil {
		return s.Status(session), err
	}
	return s.Status(session), cause
}

func (s *LoginService) log(ctx context.Context) *zap.Logger {
	return logger.WithLogger(ctx, s.logger)
}
