package identity

import "time"

// LoginStep is a state of the login state machine
type LoginStep string

const (
	LoginStepPhone   LoginStep = "phone"
	LoginStepOTP     LoginStep = "otp"
	LoginStepAddress LoginStep = "address"
	LoginStepDone    LoginStep = "done"
)

// IsValid checks if the step is a known LoginStep
func (s LoginStep) IsValid() bool {
	switch s {
	case LoginStepPhone, LoginStepOTP, LoginStepAddress, LoginStepDone:
		return true
	}
	return false
}

// String returns the string representation of LoginStep
func (s LoginStep) String() string {
	return string(s)
}

// LoginFlow is the phone -> otp -> address -> done state machine. Each
// transition returns the next state; failures keep the current step and
// record a message for the shopper.
type LoginFlow struct {
	Step           LoginStep `json:"step"`
	Phone          string    `json:"phone"`
	OTP            OTPInput  `json:"otp"`
	Countdown      Countdown `json:"countdown"`
	Error          string    `json:"error,omitempty"`
	RequireAddress bool      `json:"require_address"`
}

// NewLoginFlow starts a flow at the phone step. When requireAddress is set,
// shoppers without a saved address pass through the address step.
func NewLoginFlow(requireAddress bool) LoginFlow {
	return LoginFlow{
		Step:           LoginStepPhone,
		OTP:            NewOTPInput(),
		RequireAddress: requireAddress,
	}
}

// CanRequestOTP reports whether a code may be requested at now. From the
// otp step this is only possible once the countdown has run out; resending
// is never automatic.
func (f LoginFlow) CanRequestOTP(now time.Time) bool {
	switch f.Step {
	case LoginStepPhone:
		return true
	case LoginStepOTP:
		return f.Countdown.Expired(now)
	}
	return false
}

// SetPhone stores the digits of raw, capped at MaxPhoneLength
func (f LoginFlow) SetPhone(raw string, now time.Time) (LoginFlow, error) {
	if !f.CanRequestOTP(now) {
		if f.Step == LoginStepOTP {
			return f, ErrOTPCooldown
		}
		return f, ErrInvalidLoginStep
	}
	f.Phone = SanitizePhone(raw, MaxPhoneLength)
	f.Error = ""
	return f, nil
}

// OTPRequested moves to the otp step and starts the resend countdown
func (f LoginFlow) OTPRequested(now time.Time) LoginFlow {
	f.Step = LoginStepOTP
	f.OTP = NewOTPInput()
	f.Countdown = StartCountdown(now, OTPCountdownSeconds)
	f.Error = ""
	return f
}

// Fail keeps the current step and records a shopper-facing message
func (f LoginFlow) Fail(message string) LoginFlow {
	f.Error = message
	return f
}

// EnterOTP applies a key press to the code boxes
func (f LoginFlow) EnterOTP(index int, value string) (LoginFlow, error) {
	if f.Step != LoginStepOTP {
		return f, ErrInvalidLoginStep
	}
	f.OTP = f.OTP.Enter(index, value)
	return f, nil
}

// BackspaceOTP applies a backspace to the code boxes
func (f LoginFlow) BackspaceOTP(index int) (LoginFlow, error) {
	if f.Step != LoginStepOTP {
		return f, ErrInvalidLoginStep
	}
	f.OTP = f.OTP.Backspace(index)
	return f, nil
}

// Verified completes the otp step. Shoppers the backend already knows an
// address for go straight to done.
func (f LoginFlow) Verified(hasAddress bool) (LoginFlow, error) {
	if f.Step != LoginStepOTP {
		return f, ErrInvalidLoginStep
	}
	f.Error = ""
	if hasAddress || !f.RequireAddress {
		f.Step = LoginStepDone
		return f, nil
	}
	f.Step = LoginStepAddress
	return f, nil
}

// AddressSaved completes the address step
func (f LoginFlow) AddressSaved() (LoginFlow, error) {
	if f.Step != LoginStepAddress {
		return f, ErrInvalidLoginStep
	}
	f.Error = ""
	f.Step = LoginStepDone
	return f, nil
}

// Done reports whether the flow finished
func (f LoginFlow) Done() bool {
	return f.Step == LoginStepDone
}
