package identity

import "strings"

// UserProfile is the shopper profile owned by the backend
type UserProfile struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	DetailAddress string `json:"detail_address,omitempty"`
}

// FullAddress joins the base address and the detail
func (p UserProfile) FullAddress() string {
	return joinAddress(p.Address, p.DetailAddress)
}

// HasAddress reports whether a delivery address is on file
func (p UserProfile) HasAddress() bool {
	return strings.TrimSpace(p.Address) != ""
}

// AddressForm is the input of the address login step
type AddressForm struct {
	ReceiverName  string
	Address       string
	DetailAddress string
}

// Validate requires every field to be non-blank
func (f AddressForm) Validate() error {
	if strings.TrimSpace(f.ReceiverName) == "" ||
		strings.TrimSpace(f.Address) == "" ||
		strings.TrimSpace(f.DetailAddress) == "" {
		return ErrAddressIncomplete
	}
	return nil
}

// FullAddress joins the base address and the detail
func (f AddressForm) FullAddress() string {
	return joinAddress(f.Address, f.DetailAddress)
}

func joinAddress(base, detail string) string {
	base = strings.TrimSpace(base)
	detail = strings.TrimSpace(detail)
	switch {
	case base == "":
		return detail
	case detail == "":
		return base
	}
	return base + " " + detail
}
