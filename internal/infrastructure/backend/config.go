package backend

import (
	"errors"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the production store backend
	DefaultBaseURL = "https://albazaarkorea.com"
	// DefaultTimeoutSeconds bounds every backend call
	DefaultTimeoutSeconds = 10
	// DefaultMaxResponseBytes caps how much of a response body is read (10MB)
	DefaultMaxResponseBytes = 10 * 1024 * 1024
)

// Errors for backend configuration
var (
	ErrConfigMissingBaseURL = errors.New("backend: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("backend: base URL must be an absolute http(s) URL")
)

// Config holds the store backend connection settings
type Config struct {
	// BaseURL serves every endpoint except product detail
	BaseURL string
	// ProductBaseURL serves product detail; falls back to BaseURL
	ProductBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// MaxResponseBytes caps response bodies
	MaxResponseBytes int64
}

// NewConfig creates a configuration with defaults for baseURL
func NewConfig(baseURL string) *Config {
	return &Config{
		BaseURL:          baseURL,
		TimeoutSeconds:   DefaultTimeoutSeconds,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if err := checkBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.ProductBaseURL == "" {
		c.ProductBaseURL = c.BaseURL
	} else if err := checkBaseURL(c.ProductBaseURL); err != nil {
		return err
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.ProductBaseURL = strings.TrimRight(c.ProductBaseURL, "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = DefaultMaxResponseBytes
	}
	return nil
}

func checkBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	return nil
}
