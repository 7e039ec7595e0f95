package identity

import "time"

// OTPCountdownSeconds is how long a requested code must be waited out
// before another one can be requested
const OTPCountdownSeconds = 120

// Countdown tracks the resend countdown that starts when a code is requested.
// The remaining value is derived from the clock so it survives across
// requests handled by different server instances.
type Countdown struct {
	StartedAt time.Time `json:"started_at"`
	Seconds   int       `json:"seconds"`
}

// StartCountdown starts a countdown of the given length at now
func StartCountdown(now time.Time, seconds int) Countdown {
	return Countdown{StartedAt: now, Seconds: seconds}
}

// Remaining returns the whole seconds left at now, never below zero
func (c Countdown) Remaining(now time.Time) int {
	if c.StartedAt.IsZero() || c.Seconds <= 0 {
		return 0
	}
	elapsed := int(now.Sub(c.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := c.Seconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the countdown reached zero
func (c Countdown) Expired(now time.Time) bool {
	return c.Remaining(now) == 0
}

// NextTick returns the value shown one second after remaining
func NextTick(remaining int) int {
	if remaining <= 0 {
		return 0
	}
	return remaining - 1
}
