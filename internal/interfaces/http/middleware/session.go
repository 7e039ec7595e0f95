package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionKey is the gin context key holding the *identityapp.ResolvedSession
const SessionKey = "storefront_session"

// SessionResolver maps a cookie value to a session
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*identityapp.ResolvedSession, error)
}

// SessionCookie holds the attributes of the session cookie
type SessionCookie struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps the configured policy name to http.SameSite
func ParseSameSite(policy string) http.SameSite {
	switch strings.ToLower(policy) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SessionMiddlewareConfig holds configuration for the session middleware
type SessionMiddlewareConfig struct {
	Resolver SessionResolver
	Cookie   SessionCookie
	// SkipPaths never get a session, e.g. health probes
	SkipPaths []string
	Logger    *zap.Logger
}

// Session binds every request to a server-side session. Browsers without a
// valid cookie get a fresh anonymous session and a new cookie.
func Session(cfg SessionMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = "/"
	}

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		token, _ := c.Cookie(cfg.Cookie.Name)
		resolved, err := cfg.Resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			cfg.Logger.Error("Failed to resolve session",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			AbortWithError(c, http.StatusServiceUnavailable, dto.ErrCodeInternal,
				"Session storage is unavailable. Please try again.")
			return
		}

		if resolved.Issued != nil {
			SetSessionCookie(c, cfg.Cookie, resolved.Issued.Value, resolved.Issued.ExpiresAt)
		}

		session := resolved.Session
		var maskedPhone string
		if session.IsAuthenticated() {
			maskedPhone = identity.MaskPhone(session.Phone)
		}
		ctx, sessionLogger := logger.WithSession(c.Request.Context(), logger.FromContext(c.Request.Context()), session.ID, maskedPhone)
		c.Request = c.Request.WithContext(ctx)
		c.Set("logger", sessionLogger)
		c.Set(SessionKey, resolved)

		c.Next()
	}
}

// RequireLogin rejects anonymous sessions with ERR_LOGIN_REQUIRED
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved := GetSession(c)
		if resolved == nil || !resolved.Session.IsAuthenticated() {
			AbortWithError(c, http.StatusUnauthorized, dto.ErrCodeLoginRequired, identity.ErrLoginRequired.Message)
			return
		}
		c.Next()
	}
}

// GetSession returns the session bound by Session, or nil
func GetSession(c *gin.Context) *identityapp.ResolvedSession {
	if v, ok := c.Get(SessionKey); ok {
		if resolved, ok := v.(*identityapp.ResolvedSession); ok {
			return resolved
		}
	}
	return nil
}

// SetSessionCookie writes the session cookie
func SetSessionCookie(c *gin.Context, cookie SessionCookie, value string, expiresAt time.Time) {
	maxAge := max(int(time.Until(expiresAt).Seconds()), 1)
	c.SetSameSite(cookie.SameSite)
	c.SetCookie(cookie.Name, value, maxAge, cookie.Path, cookie.Domain, cookie.Secure, true)
}

// ClearSessionCookie tells the browser to drop the session cookie
func ClearSessionCookie(c *gin.Context, cookie SessionCookie) {
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	c.SetSameSite(cookie.SameSite)
	c.SetCookie(cookie.Name, "", -1, cookie.Path, cookie.Domain, cookie.Secure, true)
}
