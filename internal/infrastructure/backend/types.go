package backend

import (
	"encoding/json"

	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/catalog"
)

// Wire shapes of the store backend. Field names are the backend's.

type phoneRequest struct {
	Phone string `json:"phone"`
}

type verifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type verifyResponse struct {
	Activated bool   `json:"activated"`
	Token     string `json:"token"`
	Addr      string `json:"addr"`
}

type updateAddressRequest struct {
	Phone           string `json:"phone"`
	ReceiverName    string `json:"receiverName"`
	Address         string `json:"address"`
	DetailedAddress string `json:"detailedAddress"`
}

type userPayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Addr  string `json:"addr"`
}

type addToCartRequest struct {
	Phone string    `json:"phone"`
	Cart  cart.Item `json:"cart"`
}

type cartLineRequest struct {
	Phone string `json:"phone"`
	ID    string `json:"id"`
}

type confirmationRequest struct {
	Phone string `json:"phone"`
	Total int64  `json:"total"`
}

// cartResponse is {cart:{cart:[...]}} or, from older deployments,
// {cart:[...]}
type cartResponse struct {
	Cart json.RawMessage `json:"cart"`
}

type cartDocument struct {
	Cart []cart.Item `json:"cart"`
}

type productPageResponse struct {
	Products []catalog.Product `json:"products"`
}

type specialsResponse struct {
	Data []catalog.Product `json:"data"`
}
