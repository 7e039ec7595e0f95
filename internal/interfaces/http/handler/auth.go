package handler

import (
	"context"
	"errors"
	"time"

	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"github.com/albazaar/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Countdown stream event names
const (
	EventCountdown     = "countdown"
	EventCountdownDone = "done"
)

// AuthHandler handles the phone login flow
type AuthHandler struct {
	BaseHandler
	login   *identityapp.LoginService
	cookie  middleware.SessionCookie
	metrics *telemetry.StorefrontMetrics
	tick    time.Duration
	now     func() time.Time
}

// NewAuthHandler creates a new auth handler. cookie must match the cookie
// the session middleware issues so logout can clear it.
func NewAuthHandler(login *identityapp.LoginService, cookie middleware.SessionCookie, metrics *telemetry.StorefrontMetrics) *AuthHandler {
	return &AuthHandler{
		login:   login,
		cookie:  cookie,
		metrics: metrics,
		tick:    time.Second,
		now:     time.Now,
	}
}

// RequestOTP stores the phone number and texts a code to it
// POST /api/v1/auth/phone
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var req PhoneRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.login.RequestOTP(c.Request.Context(), resolved.Session, req.Phone)
	if err != nil {
		h.HandleError(c, withView(err, view))
		return
	}
	h.Success(c, view)
}

// OTPKey applies one key press to the OTP boxes
// PATCH /api/v1/auth/otp/keys
func (h *AuthHandler) OTPKey(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var req OTPKeyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.login.KeyEvent(c.Request.Context(), resolved.Session, identityapp.KeyInput{
		Index: req.Index,
		Key:   req.Key,
	})
	if err != nil {
		h.HandleError(c, withView(err, view))
		return
	}
	h.Success(c, view)
}

// VerifyOTP checks the code and logs the session in
// POST /api/v1/auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var req VerifyOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.login.Verify(c.Request.Context(), resolved.Session, req.OTP)
	if err != nil {
		h.HandleError(c, withView(err, view))
		return
	}
	h.Success(c, view)
}

// SubmitAddress saves the address captured at first login
// POST /api/v1/auth/address
func (h *AuthHandler) SubmitAddress(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	var req AddressRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.login.SubmitAddress(c.Request.Context(), resolved.Session, identity.AddressForm{
		ReceiverName:  req.ReceiverName,
		Address:       req.Address,
		DetailAddress: req.DetailAddress,
	})
	if err != nil {
		h.HandleError(c, withView(err, view))
		return
	}
	h.Success(c, view)
}

// Countdown streams the OTP resend countdown as server-sent events, one
// event per second down to zero. The value is derived from when
// the code was requested, so reconnecting resumes at the right second.
// GET /api/v1/auth/otp/countdown
func (h *AuthHandler) Countdown(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}
	flow := resolved.Session.Login
	ctx := c.Request.Context()

	h.metrics.CountdownStreamOpened(ctx)
	defer h.metrics.CountdownStreamClosed(context.WithoutCancel(ctx))

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	remaining := flow.Countdown.Remaining(h.now())
	h.sendCountdown(c, flow, remaining)
	if remaining == 0 {
		h.finishCountdown(c, flow)
		return
	}

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	for remaining > 0 {
		select {
		case <-ctx.Done():
			logger.GetGinLogger(c).Debug("Countdown stream closed by client",
				zap.Int("remaining", remaining))
			return
		case <-ticker.C:
			// The shown value steps down one second at a time and never
			// runs ahead of the clock
			next := flow.Countdown.Remaining(h.now())
			for remaining > next {
				remaining = identity.NextTick(remaining)
				h.sendCountdown(c, flow, remaining)
			}
		}
	}
	h.finishCountdown(c, flow)
}

func (h *AuthHandler) sendCountdown(c *gin.Context, flow identity.LoginFlow, remaining int) {
	c.SSEvent(EventCountdown, CountdownEvent{
		Remaining:     remaining,
		CanRequestOTP: remaining == 0 && flow.CanRequestOTP(h.now()),
	})
	c.Writer.Flush()
}

func (h *AuthHandler) finishCountdown(c *gin.Context, flow identity.LoginFlow) {
	c.SSEvent(EventCountdownDone, CountdownEvent{CanRequestOTP: flow.CanRequestOTP(h.now())})
	c.Writer.Flush()
}

// Logout deletes the session and clears its cookie. The cookie is cleared
// even when the session store could not be updated.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	resolved, ok := h.Session(c)
	if !ok {
		return
	}

	err := h.login.Logout(c.Request.Context(), resolved)
	middleware.ClearSessionCookie(c, h.cookie)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// withView attaches the login state to a domain error so the client can
// render the step together with the message
func withView(err error, view identityapp.LoginView) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Details == nil {
		return domainErr.WithDetails(view)
	}
	return err
}
