package handler

// =====================
// Login Request DTOs
// =====================

// PhoneRequest starts a login for a phone number. Blank and malformed
// numbers are reported on the phone step, not as validation errors.
type PhoneRequest struct {
	Phone string `json:"phone" binding:"max=32"`
}

// OTPKeyRequest is one key press on an OTP box. An empty key clears the
// box; pasted text fills consecutive boxes.
type OTPKeyRequest struct {
	Index int    `json:"index" binding:"gte=0,lt=6"`
	Key   string `json:"key" binding:"max=16"`
}

// VerifyOTPRequest verifies a code. An empty OTP verifies the boxes.
type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"omitempty,len=6,numeric"`
}

// AddressRequest is the address step of a first login
type AddressRequest struct {
	ReceiverName  string `json:"receiver_name" binding:"max=100"`
	Address       string `json:"address" binding:"max=300"`
	DetailAddress string `json:"detail_address" binding:"max=300"`
}

// =====================
// Login Response DTOs
// =====================

// CountdownEvent is one tick of the OTP resend countdown stream
type CountdownEvent struct {
	Remaining     int  `json:"remaining"`
	CanRequestOTP bool `json:"can_request_otp"`
}

// LogoutResponse represents the logout response
type LogoutResponse struct {
	Message string `json:"message"`
}
