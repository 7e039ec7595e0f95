package identity

import "strings"

// OTPLength is the number of boxes in the one-time password input
const OTPLength = 6

// OTPInput is the state of the six single-digit code boxes. Focus is the
// index of the box that should hold the caret. Every method returns a new
// value and leaves the receiver untouched.
type OTPInput struct {
	Digits [OTPLength]string `json:"digits"`
	Focus  int               `json:"focus"`
}

// NewOTPInput returns empty boxes with focus on the first one
func NewOTPInput() OTPInput {
	return OTPInput{}
}

// Enter applies typed or pasted text to box index. Non-digit characters are
// dropped. A single digit fills the box and advances focus to the next box
// when there is one. Several digits fill consecutive boxes starting at index.
// Empty text clears the box without moving focus.
func (in OTPInput) Enter(index int, value string) OTPInput {
	if index < 0 || index >= OTPLength {
		return in
	}

	digits := digitsOnly(value, 0)
	if value == "" {
		in.Digits[index] = ""
		in.Focus = index
		return in
	}
	if digits == "" {
		return in
	}

	pos := index
	for _, d := range digits {
		if pos >= OTPLength {
			break
		}
		in.Digits[pos] = string(d)
		pos++
	}
	in.Focus = min(pos, OTPLength-1)
	return in
}

// Backspace handles the backspace key on box index. A filled box is cleared
// and keeps focus; on an empty box focus moves back one box.
func (in OTPInput) Backspace(index int) OTPInput {
	if index < 0 || index >= OTPLength {
		return in
	}
	if in.Digits[index] != "" {
		in.Digits[index] = ""
		in.Focus = index
		return in
	}
	if index > 0 {
		in.Focus = index - 1
	}
	return in
}

// Code concatenates the boxes
func (in OTPInput) Code() string {
	return strings.Join(in.Digits[:], "")
}

// Complete reports whether every box holds a digit
func (in OTPInput) Complete() bool {
	for _, d := range in.Digits {
		if d == "" {
			return false
		}
	}
	return true
}

// OTPInputFromCode fills the boxes from a full code string
func OTPInputFromCode(code string) OTPInput {
	return NewOTPInput().Enter(0, code)
}
