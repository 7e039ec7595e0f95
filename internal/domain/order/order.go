package order

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/shared/valueobject"
)

// Fixed order metadata expected by the backend
const (
	WebAddressID        = "Webid"
	WebAddressDataID    = "webid"
	AddressTypeText     = "text"
	PaymentBankTransfer = "Direct Bank Transfer"
)

// OrderDateLayout is the order date format the backend stores
const OrderDateLayout = "1/2/2006, 3:04:05 PM"

// AddressData is the delivery address embedded in an order
type AddressData struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Type      string `json:"type"`
	AddressID string `json:"address_id"`
}

// PlaceOrderRequest is the order object posted to the backend
type PlaceOrderRequest struct {
	UserID        string      `json:"user_id"`
	Date          string      `json:"date"`
	AddressID     string      `json:"address_id"`
	ReceiverName  string      `json:"receiver_name"`
	ReceiverPhone string      `json:"receiver_phone"`
	Status        Status      `json:"status"`
	PaymentType   string      `json:"payment_type"`
	ShippingReq   string      `json:"shippingReq"`
	Total         int64       `json:"total"`
	Cart          []cart.Item `json:"cart"`
	AddressData   AddressData `json:"address_data"`
}

// NewPlaceOrderRequest assembles the order for the shopper identified by
// phone from the form, the cart snapshot and the quote
func NewPlaceOrderRequest(phone string, form CheckoutForm, items []cart.Item, quote Quote, placedAt time.Time) PlaceOrderRequest {
	if items == nil {
		items = []cart.Item{}
	}
	return PlaceOrderRequest{
		UserID:        phone,
		Date:          placedAt.Format(OrderDateLayout),
		AddressID:     WebAddressID,
		ReceiverName:  form.ReceiverName,
		ReceiverPhone: form.ReceiverPhone,
		Status:        StatusOnHold,
		PaymentType:   PaymentBankTransfer,
		ShippingReq:   form.Notes,
		Total:         quote.Total.Int64(),
		Cart:          items,
		AddressData: AddressData{
			Name:      form.ReceiverName,
			Phone:     phone,
			Address:   form.FullAddress,
			Type:      AddressTypeText,
			AddressID: WebAddressDataID,
		},
	}
}

// Order is a placed order as returned by the order history endpoint
type Order struct {
	ID            string          `json:"_id"`
	OrderID       string          `json:"order_id"`
	Date          string          `json:"date"`
	Status        Status          `json:"status"`
	Cart          []cart.Item     `json:"cart"`
	Total         decimal.Decimal `json:"total"`
	ReceiverName  string          `json:"receiver_name,omitempty"`
	ReceiverPhone string          `json:"receiver_phone,omitempty"`
	AddressData   *AddressData    `json:"address_data,omitempty"`
}

// ItemsTotal is the sum of the line totals
func (o Order) ItemsTotal() valueobject.Money {
	return cart.New(o.Cart).Subtotal()
}

// ShippingPaid is the order total minus the items total, never negative
func (o Order) ShippingPaid() valueobject.Money {
	diff := o.Total.Sub(o.ItemsTotal().Amount())
	if diff.IsNegative() {
		return valueobject.ZeroWon()
	}
	return valueobject.WonFromDecimal(diff)
}

// PlacedAt parses the order date, reporting false for unparseable dates
func (o Order) PlacedAt(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(OrderDateLayout, o.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SortNewestFirst orders by date, newest first. Orders with unparseable
// dates keep their relative order after the dated ones.
func SortNewestFirst(orders []Order, loc *time.Location) {
	sort.SliceStable(orders, func(i, j int) bool {
		ti, iok := orders[i].PlacedAt(loc)
		tj, jok := orders[j].PlacedAt(loc)
		switch {
		case iok && jok:
			return ti.After(tj)
		case iok:
			return true
		default:
			return false
		}
	})
}
