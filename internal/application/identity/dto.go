package identity

import (
	"time"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/order"
	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// LoginView is the login state a client renders
type LoginView struct {
	LoggedIn           bool                       `json:"logged_in"`
	Phone              string                     `json:"phone,omitempty"`
	Step               identity.LoginStep         `json:"step"`
	Error              string                     `json:"error,omitempty"`
	OTP                [identity.OTPLength]string `json:"otp"`
	Focus              int                        `json:"focus"`
	CountdownRemaining int                        `json:"countdown_remaining"`
	CanRequestOTP      bool                       `json:"can_request_otp"`
	RequireAddress     bool                       `json:"require_address"`
}

// NewLoginView renders session at now
func NewLoginView(session *identity.Session, now time.Time) LoginView {
	flow := session.Login
	phone := flow.Phone
	if session.IsAuthenticated() {
		phone = session.Phone
	}
	return LoginView{
		LoggedIn:           session.IsAuthenticated(),
		Phone:              phone,
		Step:               flow.Step,
		Error:              flow.Error,
		OTP:                flow.OTP.Digits,
		Focus:              flow.OTP.Focus,
		CountdownRemaining: flow.Countdown.Remaining(now),
		CanRequestOTP:      flow.CanRequestOTP(now),
		RequireAddress:     flow.RequireAddress,
	}
}

// KeyInput is one key event on an OTP box
type KeyInput struct {
	Index int
	Key   string
}

// BackspaceKey is the key name that clears a box
const BackspaceKey = "Backspace"

// ProfileInput updates the shopper profile
type ProfileInput struct {
	Name          string
	Address       string
	DetailAddress string
}

// OrderView is one order in the history list
type OrderView struct {
	ID            string            `json:"id"`
	OrderID       string            `json:"order_id"`
	Date          string            `json:"date"`
	Status        order.Status      `json:"status"`
	Badge         order.Badge       `json:"badge"`
	ItemCount     int               `json:"item_count"`
	ItemsTotal    valueobject.Money `json:"items_total"`
	Shipping      valueobject.Money `json:"shipping"`
	Total         valueobject.Money `json:"total"`
	ReceiverName  string            `json:"receiver_name,omitempty"`
	ReceiverPhone string            `json:"receiver_phone,omitempty"`
	Address       string            `json:"address,omitempty"`
	Items         []OrderLineView   `json:"items"`
}

// OrderLineView is one line of a past order
type OrderLineView struct {
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	Image       string            `json:"image,omitempty"`
	Quantity    int               `json:"quantity"`
	UnitPrice   valueobject.Money `json:"unit_price"`
	Total       valueobject.Money `json:"total"`
}

// NewOrderView renders o
func NewOrderView(o order.Order) OrderView {
	view := OrderView{
		ID:            o.ID,
		OrderID:       o.OrderID,
		Date:          o.Date,
		Status:        o.Status,
		Badge:         o.Status.Badge(),
		ItemsTotal:    o.ItemsTotal(),
		Shipping:      o.ShippingPaid(),
		Total:         valueobject.WonFromDecimal(o.Total),
		ReceiverName:  o.ReceiverName,
		ReceiverPhone: o.ReceiverPhone,
		Items:         make([]OrderLineView, 0, len(o.Cart)),
	}
	if o.AddressData != nil {
		view.Address = o.AddressData.Address
	}
	for _, it := range o.Cart {
		it = it.Recompute()
		line := OrderLineView{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice(),
			Total:       it.LineTotal(),
		}
		if len(it.Images) > 0 {
			line.Image = it.Images[0]
		}
		view.ItemCount += it.Quantity
		view.Items = append(view.Items, line)
	}
	return view
}
