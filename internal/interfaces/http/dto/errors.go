package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeNotFound is used for unknown routes and resources
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Login error codes
const (
	ErrCodeInvalidPhone        = "ERR_INVALID_PHONE"
	ErrCodeOTPCooldown         = "ERR_OTP_COOLDOWN"
	ErrCodeOTPIncomplete       = "ERR_OTP_INCOMPLETE"
	ErrCodeOTPRejected         = "ERR_OTP_REJECTED"
	ErrCodeOTPNotSent          = "ERR_OTP_NOT_SENT"
	ErrCodeOTPRequestFailed    = "ERR_OTP_REQUEST_FAILED"
	ErrCodeOTPVerifyFailed     = "ERR_OTP_VERIFY_FAILED"
	ErrCodeAddressIncomplete   = "ERR_ADDRESS_INCOMPLETE"
	ErrCodeAddressUpdateFailed = "ERR_ADDRESS_UPDATE_FAILED"
	ErrCodeProfileIncomplete   = "ERR_PROFILE_INCOMPLETE"
	ErrCodeInvalidLoginStep    = "ERR_INVALID_LOGIN_STEP"
)

// Session error codes
const (
	// ErrCodeLoginRequired is used when an anonymous session calls a
	// protected endpoint
	ErrCodeLoginRequired = "ERR_LOGIN_REQUIRED"
	// ErrCodeSessionExpired is used when the backend rejected the session
	// credential
	ErrCodeSessionExpired = "ERR_SESSION_EXPIRED"
	// ErrCodeSessionNotFound is used when a session disappeared mid-request
	ErrCodeSessionNotFound = "ERR_SESSION_NOT_FOUND"
	// ErrCodeUnauthorized is the generic authorization failure
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
)

// Cart and catalog error codes
const (
	ErrCodeInvalidQuantity  = "ERR_INVALID_QUANTITY"
	ErrCodeInvalidProduct   = "ERR_INVALID_PRODUCT"
	ErrCodeCartItemNotFound = "ERR_CART_ITEM_NOT_FOUND"
	ErrCodeCartEmpty        = "ERR_CART_EMPTY"
	ErrCodeCartUpdateFailed = "ERR_CART_UPDATE_FAILED"
	ErrCodeProductNotFound  = "ERR_PRODUCT_NOT_FOUND"
)

// Checkout error codes
const (
	ErrCodeCheckoutInvalid     = "ERR_CHECKOUT_INVALID"
	ErrCodeCheckoutInProgress  = "ERR_CHECKOUT_IN_PROGRESS"
	ErrCodeCheckoutFailed      = "ERR_CHECKOUT_FAILED"
	ErrCodeCheckoutNotFound    = "ERR_CHECKOUT_NOT_FOUND"
	ErrCodeInvalidShippingTier = "ERR_INVALID_SHIPPING_TIER"
)

// State error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeConflict is used for general conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Backend error codes
const (
	// ErrCodeBackendUnavailable is used when the backend cannot be reached
	ErrCodeBackendUnavailable = "ERR_BACKEND_UNAVAILABLE"
	// ErrCodeBackendFailed is used when the backend answered with a failure
	ErrCodeBackendFailed = "ERR_BACKEND_FAILED"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// LoginRedirect is where clients are sent when the session must log in
const LoginRedirect = "/login"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeNotFound: http.StatusNotFound,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeInvalidPhone:        http.StatusBadRequest,
	ErrCodeOTPIncomplete:       http.StatusBadRequest,
	ErrCodeAddressIncomplete:   http.StatusBadRequest,
	ErrCodeProfileIncomplete:   http.StatusBadRequest,
	ErrCodeInvalidQuantity:     http.StatusBadRequest,
	ErrCodeInvalidProduct:      http.StatusBadRequest,
	ErrCodeCheckoutInvalid:     http.StatusBadRequest,
	ErrCodeInvalidShippingTier: http.StatusBadRequest,

	// Session errors -> 401 Unauthorized
	ErrCodeLoginRequired:  http.StatusUnauthorized,
	ErrCodeSessionExpired: http.StatusUnauthorized,
	ErrCodeUnauthorized:   http.StatusUnauthorized,

	// Resource errors -> 404 Not Found
	ErrCodeSessionNotFound:  http.StatusNotFound,
	ErrCodeCartItemNotFound: http.StatusNotFound,
	ErrCodeProductNotFound:  http.StatusNotFound,
	ErrCodeCheckoutNotFound: http.StatusNotFound,

	// State errors -> 409 Conflict
	ErrCodeCheckoutInProgress: http.StatusConflict,
	ErrCodeInvalidLoginStep:   http.StatusConflict,
	ErrCodeConflict:           http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeCartEmpty:    http.StatusUnprocessableEntity,
	ErrCodeOTPRejected:  http.StatusUnprocessableEntity,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeOTPCooldown: http.StatusTooManyRequests,
	ErrCodeRateLimited: http.StatusTooManyRequests,

	// Backend failures -> 502 Bad Gateway
	ErrCodeOTPNotSent:          http.StatusBadGateway,
	ErrCodeOTPRequestFailed:    http.StatusBadGateway,
	ErrCodeOTPVerifyFailed:     http.StatusBadGateway,
	ErrCodeAddressUpdateFailed: http.StatusBadGateway,
	ErrCodeCheckoutFailed:      http.StatusBadGateway,
	ErrCodeCartUpdateFailed:    http.StatusBadGateway,
	ErrCodeBackendUnavailable:  http.StatusBadGateway,
	ErrCodeBackendFailed:       http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RedirectFor returns where the client should navigate after code, if
// anywhere
func RedirectFor(code string) string {
	switch code {
	case ErrCodeLoginRequired, ErrCodeSessionExpired:
		return LoginRedirect
	}
	return ""
}

// LegacyErrorCodeMapping maps shared domain codes whose name differs from
// the wire code
var LegacyErrorCodeMapping = map[string]string{
	"VALIDATION_ERROR": ErrCodeValidation,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the ERR_ wire format.
// Codes already in the wire format pass through unchanged.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
