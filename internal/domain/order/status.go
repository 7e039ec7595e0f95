package order

// Status is an order status as reported by the backend
type Status string

const (
	StatusOnHold    Status = "On Hold"
	StatusConfirmed Status = "Confirmed"
	StatusDelivered Status = "Delivered"
	StatusCanceled  Status = "Canceled"
)

// Badge is the display variant of a status label
type Badge string

const (
	BadgeWarning     Badge = "warning"
	BadgeInfo        Badge = "info"
	BadgeSuccess     Badge = "success"
	BadgeDestructive Badge = "destructive"
	BadgeSecondary   Badge = "secondary"
)

// IsValid checks if the status is one the storefront knows
func (s Status) IsValid() bool {
	switch s {
	case StatusOnHold, StatusConfirmed, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Badge returns the display variant. Unknown statuses get the secondary
// badge.
func (s Status) Badge() Badge {
	switch s {
	case StatusOnHold:
		return BadgeWarning
	case StatusConfirmed:
		return BadgeInfo
	case StatusDelivered:
		return BadgeSuccess
	case StatusCanceled:
		return BadgeDestructive
	default:
		return BadgeSecondary
	}
}
