package identity

import "github.com/albazaar/storefront/internal/domain/shared"

// Login and session errors. Messages are shown to the shopper as-is.
var (
	ErrInvalidPhone        = shared.NewDomainError("INVALID_PHONE", "Please enter a valid phone number")
	ErrOTPCooldown         = shared.NewDomainError("OTP_COOLDOWN", "Please wait until the countdown ends before requesting a new code")
	ErrOTPIncomplete       = shared.NewDomainError("OTP_INCOMPLETE", "Please enter all 6 digits of the code")
	ErrOTPRejected         = shared.NewDomainError("OTP_REJECTED", "Invalid OTP. Please try again.")
	ErrOTPNotSent          = shared.NewDomainError("OTP_NOT_SENT", "Failed to send OTP. Please try again.")
	ErrOTPRequestFailed    = shared.NewDomainError("OTP_REQUEST_FAILED", "An error occurred while sending OTP. Please try again.")
	ErrOTPVerifyFailed     = shared.NewDomainError("OTP_VERIFY_FAILED", "An error occurred during OTP verification. Please try again.")
	ErrAddressIncomplete   = shared.NewDomainError("ADDRESS_INCOMPLETE", "Receiver name, address and address detail are required")
	ErrAddressUpdateFailed = shared.NewDomainError("ADDRESS_UPDATE_FAILED", "Failed to save your address. Please try again.")
	ErrProfileIncomplete   = shared.NewDomainError("PROFILE_INCOMPLETE", "Please enter your name")
	ErrInvalidLoginStep    = shared.NewDomainError("INVALID_LOGIN_STEP", "This action is not available at the current login step")
	ErrLoginRequired       = shared.NewDomainError("LOGIN_REQUIRED", "Please log in to continue")
	ErrSessionExpired      = shared.NewDomainError("SESSION_EXPIRED", "Your session has expired. Please log in again")
	ErrSessionNotFound     = shared.NewDomainError("SESSION_NOT_FOUND", "Session not found")
)
