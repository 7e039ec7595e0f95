package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	identityapp "github.com/albazaar/storefront/internal/application/identity"
	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/infrastructure/auth"
	"github.com/albazaar/storefront/internal/infrastructure/cache"
	"github.com/albazaar/storefront/internal/infrastructure/config"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingResolver struct{}

func (failingResolver) Resolve(context.Context, string) (*identityapp.ResolvedSession, error) {
	return nil, errors.New("redis down")
}

func newSessionManager(t *testing.T) *identityapp.SessionManager {
	t.Helper()

	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewJWTService(config.SessionConfig{
		Secret: "test-secret",
		Issuer: "albazaar-storefront",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	return identityapp.NewSessionManager(
		cache.NewSessionStore(store),
		tokens,
		auth.NewStoreTokenBlacklist(store),
		nil,
		identityapp.SessionManagerConfig{},
		zap.NewNop(),
	)
}

func testCookie() SessionCookie {
	return SessionCookie{Name: "albazaar_session", Path: "/", SameSite: http.SameSiteLaxMode}
}

func TestSession(t *testing.T) {
	sessions := newSessionManager(t)

	var sessionID, loggedSessionID string
	router := gin.New()
	router.Use(Session(SessionMiddlewareConfig{
		Resolver:  sessions,
		Cookie:    testCookie(),
		SkipPaths: []string{"/health"},
	}))
	router.GET("/api/v1/session", func(c *gin.Context) {
		sessionID = GetSession(c).Session.ID
		loggedSessionID = logger.GetSessionID(c.Request.Context())
		c.String(http.StatusOK, "ok")
	})
	router.GET("/health", func(c *gin.Context) {
		assert.Nil(t, GetSession(c))
		c.String(http.StatusOK, "ok")
	})

	t.Run("issues a cookie for a new browser", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/session", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "albazaar_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.NotEmpty(t, sessionID)
		assert.Equal(t, sessionID, loggedSessionID)
	})

	t.Run("reuses the session for a returning browser", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/session", nil))
		first := sessionID
		cookie := w.Result().Cookies()[0]

		req := httptest.NewRequest("GET", "/api/v1/session", nil)
		req.AddCookie(cookie)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, first, sessionID)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("replaces a forged cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/session", nil)
		req.AddCookie(&http.Cookie{Name: "albazaar_session", Value: "not-a-jwt"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, w.Result().Cookies(), 1)
	})

	t.Run("skips configured paths", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestSession_ResolverFailure(t *testing.T) {
	router := gin.New()
	router.Use(Session(SessionMiddlewareConfig{Resolver: failingResolver{}, Cookie: testCookie()}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
}

func TestRequireLogin(t *testing.T) {
	newRouter := func(session *identity.Session) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if session != nil {
				c.Set(SessionKey, &identityapp.ResolvedSession{Session: session})
			}
			c.Next()
		})
		router.Use(RequireLogin())
		router.GET("/cart", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("rejects anonymous sessions", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(identity.NewSession("s1", false, time.Now())).ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_LOGIN_REQUIRED")
		assert.Contains(t, w.Body.String(), `"redirect":"/login"`)
	})

	t.Run("rejects requests without a session", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("allows logged-in sessions", func(t *testing.T) {
		session := identity.NewSession("s1", false, time.Now())
		session.Authenticate("01012345678", "token", time.Now())

		w := httptest.NewRecorder()
		newRouter(session).ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestClearSessionCookie(t *testing.T) {
	router := gin.New()
	router.POST("/logout", func(c *gin.Context) {
		ClearSessionCookie(c, testCookie())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/logout", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestParseSameSite(t *testing.T) {
	assert.Equal(t, http.SameSiteStrictMode, ParseSameSite("strict"))
	assert.Equal(t, http.SameSiteNoneMode, ParseSameSite("None"))
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite("lax"))
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite(""))
}
