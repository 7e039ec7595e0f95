package auth

import (
	"errors"
	"time"

	"github.com/albazaar/storefront/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeSession marks tokens minted for the storefront session cookie
const TokenTypeSession = "session"

// Common errors
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrTokenNotYetValid  = errors.New("token is not yet valid")
	ErrMissingSessionID  = errors.New("missing session id in claims")
	ErrTokenBlacklisted  = errors.New("token has been revoked")
	ErrMissingSecret     = errors.New("session secret is required")
	ErrNonPositiveExpiry = errors.New("session ttl must be positive")
)

// Claims are the claims of a session cookie. The JWT ID is the session ID,
// so revoking a cookie and deleting its session use the same key.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// SessionID returns the session the token is bound to
func (c *Claims) SessionID() string {
	return c.ID
}

// Remaining returns how long the token stays valid after now
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}

// IssuedToken is a signed session token and its expiry
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// JWTService signs and validates session cookies
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.SessionConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TTL <= 0 {
		return nil, ErrNonPositiveExpiry
	}
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session token for sessionID
func (s *JWTService) Issue(sessionID string) (IssuedToken, error) {
	if sessionID == "" {
		return IssuedToken{}, ErrMissingSessionID
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    s.issuer,
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TokenType: TokenTypeSession,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Validate parses a session token and returns its claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.TokenType != TokenTypeSession {
		return nil, ErrInvalidTokenType
	}
	if claims.ID == "" {
		return nil, ErrMissingSessionID
	}

	return claims, nil
}
