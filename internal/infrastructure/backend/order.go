package backend

import (
	"context"
	"net/http"

	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/order"
)

// CreateOrder submits an order
func (c *Client) CreateOrder(ctx context.Context, cred integration.Credential, req order.PlaceOrderRequest) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/makeOrder",
		cred:   &cred,
		body:   req,
	})
	return err
}

// SendConfirmation texts the order total to the shopper
func (c *Client) SendConfirmation(ctx context.Context, cred integration.Credential, phone string, total int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/sendMessage",
		cred:   &cred,
		body:   confirmationRequest{Phone: phone, Total: total},
	})
	return err
}
