package order

import (
	"strings"
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
)

// WarningDisplayDuration is how long a checkout warning stays visible
const WarningDisplayDuration = 3 * time.Second

// CheckoutForm is the delivery form submitted at checkout
type CheckoutForm struct {
	ReceiverName  string       `json:"receiver_name"`
	ReceiverPhone string       `json:"receiver_phone"`
	FullAddress   string       `json:"full_address"`
	Notes         string       `json:"notes,omitempty"`
	SaveInfo      bool         `json:"save_info"`
	Tier          ShippingTier `json:"tier"`
}

// PrefillCheckoutForm fills the receiver fields from the saved profile
func PrefillCheckoutForm(p identity.UserProfile) CheckoutForm {
	return CheckoutForm{
		ReceiverName:  p.Name,
		ReceiverPhone: p.Phone,
		FullAddress:   p.FullAddress(),
		Tier:          ShippingNormal,
	}
}

// MissingFields lists the required fields that are blank
func (f CheckoutForm) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(f.ReceiverName) == "" {
		missing = append(missing, "receiver_name")
	}
	if strings.TrimSpace(f.ReceiverPhone) == "" {
		missing = append(missing, "receiver_phone")
	}
	if strings.TrimSpace(f.FullAddress) == "" {
		missing = append(missing, "full_address")
	}
	return missing
}

// IsValid reports whether every required field is filled
func (f CheckoutForm) IsValid() bool {
	return len(f.MissingFields()) == 0
}

// Validate returns ErrCheckoutInvalid with the missing fields and a warning
// that dismisses itself
func (f CheckoutForm) Validate(now time.Time) error {
	missing := f.MissingFields()
	if len(missing) == 0 {
		return nil
	}
	return ErrCheckoutInvalid.WithDetails(InvalidFormDetails{
		Fields:  missing,
		Warning: NewWarning(ErrCheckoutInvalid.Message, now),
	})
}

// InvalidFormDetails is attached to ErrCheckoutInvalid
type InvalidFormDetails struct {
	Fields  []string `json:"fields"`
	Warning Warning  `json:"warning"`
}

// Warning is a transient message with a dismissal deadline
type Warning struct {
	Message   string    `json:"message"`
	DismissAt time.Time `json:"dismiss_at"`
}

// NewWarning creates a warning shown from now for WarningDisplayDuration
func NewWarning(message string, now time.Time) Warning {
	return Warning{Message: message, DismissAt: now.Add(WarningDisplayDuration)}
}
