package identity

import "strings"

const (
	// MaxPhoneLength is the longest accepted phone number, in digits
	MaxPhoneLength = 11
	// MinPhoneLength is the shortest phone number that can receive a code
	MinPhoneLength = 10
)

// SanitizePhone keeps only ASCII digits from raw and truncates the result to
// maxLen digits. A non-positive maxLen disables truncation.
func SanitizePhone(raw string, maxLen int) string {
	return digitsOnly(raw, maxLen)
}

func digitsOnly(raw string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if maxLen > 0 && b.Len() >= maxLen {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidatePhone checks a sanitized phone number
func ValidatePhone(phone string) error {
	if len(phone) < MinPhoneLength || len(phone) > MaxPhoneLength {
		return ErrInvalidPhone
	}
	return nil
}

// MaskPhone hides the middle digits of a phone number for logs
func MaskPhone(phone string) string {
	if len(phone) < 7 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + strings.Repeat("*", len(phone)-7) + phone[len(phone)-4:]
}
