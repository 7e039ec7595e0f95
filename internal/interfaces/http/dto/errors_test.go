package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidPhone, http.StatusBadRequest},
		{ErrCodeOTPIncomplete, http.StatusBadRequest},
		{ErrCodeCheckoutInvalid, http.StatusBadRequest},
		{ErrCodeInvalidShippingTier, http.StatusBadRequest},
		{ErrCodeLoginRequired, http.StatusUnauthorized},
		{ErrCodeSessionExpired, http.StatusUnauthorized},
		{ErrCodeCartItemNotFound, http.StatusNotFound},
		{ErrCodeProductNotFound, http.StatusNotFound},
		{ErrCodeCheckoutInProgress, http.StatusConflict},
		{ErrCodeInvalidLoginStep, http.StatusConflict},
		{ErrCodeCartEmpty, http.StatusUnprocessableEntity},
		{ErrCodeOTPRejected, http.StatusUnprocessableEntity},
		{ErrCodeOTPCooldown, http.StatusTooManyRequests},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeOTPNotSent, http.StatusBadGateway},
		{ErrCodeCheckoutFailed, http.StatusBadGateway},
		{ErrCodeBackendUnavailable, http.StatusBadGateway},
		{ErrCodeBackendFailed, http.StatusBadGateway},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Domain codes gain the prefix
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"LOGIN_REQUIRED", ErrCodeLoginRequired},
		{"SESSION_EXPIRED", ErrCodeSessionExpired},
		{"CART_EMPTY", ErrCodeCartEmpty},
		{"CHECKOUT_IN_PROGRESS", ErrCodeCheckoutInProgress},
		// Codes with a different wire name are mapped
		{"VALIDATION_ERROR", ErrCodeValidation},
		{"INTERNAL_ERROR", ErrCodeInternal},
		// Wire codes pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeValidation, ErrCodeValidation},
		{"", ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesHaveStatus(t *testing.T) {
	// Every code raised by the domain packages must map to a status
	domainCodes := []string{
		"INVALID_PHONE", "OTP_COOLDOWN", "OTP_INCOMPLETE", "OTP_REJECTED",
		"OTP_NOT_SENT", "OTP_REQUEST_FAILED", "OTP_VERIFY_FAILED",
		"ADDRESS_INCOMPLETE", "ADDRESS_UPDATE_FAILED", "PROFILE_INCOMPLETE",
		"INVALID_LOGIN_STEP", "LOGIN_REQUIRED", "SESSION_EXPIRED", "SESSION_NOT_FOUND",
		"INVALID_QUANTITY", "INVALID_PRODUCT", "CART_ITEM_NOT_FOUND", "CART_EMPTY",
		"CART_UPDATE_FAILED",
		"CHECKOUT_INVALID", "CHECKOUT_IN_PROGRESS", "CHECKOUT_FAILED",
		"CHECKOUT_NOT_FOUND", "INVALID_SHIPPING_TIER", "PRODUCT_NOT_FOUND",
		"NOT_FOUND", "INVALID_INPUT", "UNAUTHORIZED", "INVALID_STATE", "CONFLICT",
	}

	for _, code := range domainCodes {
		t.Run(code, func(t *testing.T) {
			_, ok := ErrorCodeHTTPStatus[NormalizeErrorCode(code)]
			assert.True(t, ok, "Error code %s should be in ErrorCodeHTTPStatus map", code)
		})
	}
}

func TestRedirectFor(t *testing.T) {
	assert.Equal(t, LoginRedirect, RedirectFor(ErrCodeLoginRequired))
	assert.Equal(t, LoginRedirect, RedirectFor(ErrCodeSessionExpired))
	assert.Empty(t, RedirectFor(ErrCodeCartEmpty))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code) // Should be normalized
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.Empty(t, resp.Error.Redirect)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponse_SessionExpiredRedirects(t *testing.T) {
	resp := NewErrorResponse("SESSION_EXPIRED", "Your session has expired")

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSessionExpired, resp.Error.Code)
	assert.Equal(t, "/login", resp.Error.Redirect)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	requestID := "req-123-456"
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Resource not found", requestID)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, requestID, resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "phone", Message: "This field is required"},
		{Field: "quantity", Message: "Must be at least 1"},
	}
	requestID := "req-789"

	resp := NewValidationErrorResponse("Validation failed", requestID, details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Validation failed", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "phone", resp.Error.Details[0].Field)
}

func TestResponseWithContext(t *testing.T) {
	resp := NewErrorResponse(ErrCodeCheckoutInvalid, "Please fill in all required fields").
		WithContext(map[string]any{"fields": []string{"receiver_name"}})

	require.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Context)

	// Success responses are left alone
	ok := NewSuccessResponse("x").WithContext("ignored")
	assert.Nil(t, ok.Error)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeLoginRequired, "Please log in to continue", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeLoginRequired, decoded.Error.Code)
	assert.Equal(t, "/login", decoded.Error.Redirect)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before.Add(-time.Second)))
	assert.False(t, resp.Error.Timestamp.After(after.Add(time.Second)))
}

func TestNewSuccessResponse(t *testing.T) {
	data := map[string]string{"name": "test"}
	resp := NewSuccessResponse(data)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	data := []string{"item1", "item2"}
	resp := NewSuccessResponseWithMeta(data, 2, 20, true)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.Limit)
	assert.True(t, resp.Meta.HasMore)
}
