package backend

import (
	"context"
	"net/http"

	"github.com/albazaar/storefront/internal/domain/integration"
)

// RequestOTP asks the backend to create the user if needed and text a code.
// A falsy response body means the backend declined.
func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	body, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/createUser",
		body:   phoneRequest{Phone: phone},
	})
	if err != nil {
		return err
	}
	if !truthy(body) {
		return integration.ErrBackendRejected
	}
	return nil
}

// VerifyOTP checks a code
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (integration.Verification, error) {
	body, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/verifyUser",
		body:   verifyRequest{Phone: phone, OTP: code},
	})
	if err != nil {
		return integration.Verification{}, err
	}
	if isNull(body) {
		return integration.Verification{}, nil
	}

	var resp verifyResponse
	if err := decode(body, &resp); err != nil {
		return integration.Verification{}, err
	}
	return integration.Verification{
		Activated: resp.Activated,
		Token:     resp.Token,
		Address:   resp.Addr,
	}, nil
}

// UpdateAddress saves the address captured at first login
func (c *Client) UpdateAddress(ctx context.Context, cred integration.Credential, update integration.AddressUpdate) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/updateAddress",
		cred:   &cred,
		body: updateAddressRequest{
			Phone:           cred.Phone,
			ReceiverName:    update.ReceiverName,
			Address:         update.Address,
			DetailedAddress: update.DetailedAddress,
		},
	})
	return err
}
