package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/albazaar/storefront/internal/domain/cart"
	"github.com/albazaar/storefront/internal/domain/integration"
)

// GetCart returns the canonical cart lines. Both the current
// {cart:{cart:[...]}} and the legacy {cart:[...]} shapes are accepted.
func (c *Client) GetCart(ctx context.Context, cred integration.Credential) ([]cart.Item, error) {
	body, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   credPath("/api/getCart/", cred),
		cred:   &cred,
	})
	if err != nil {
		return nil, err
	}
	if isNull(body) {
		return []cart.Item{}, nil
	}

	var resp cartResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	return decodeCartLines(resp.Cart)
}

func decodeCartLines(raw []byte) ([]cart.Item, error) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return []cart.Item{}, nil
	}

	switch raw[0] {
	case '[':
		var lines []cart.Item
		if err := decode(raw, &lines); err != nil {
			return nil, err
		}
		return lines, nil
	case '{':
		var doc cartDocument
		if err := decode(raw, &doc); err != nil {
			return nil, err
		}
		if doc.Cart == nil {
			return []cart.Item{}, nil
		}
		return doc.Cart, nil
	}
	return nil, fmt.Errorf("%w: unexpected cart shape", integration.ErrBackendInvalidResponse)
}

// AddToCart adds a line
func (c *Client) AddToCart(ctx context.Context, cred integration.Credential, item cart.Item) error {
	_, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/addToCart",
		cred:   &cred,
		body:   addToCartRequest{Phone: cred.Phone, Cart: item},
	})
	return err
}

// IncreaseCart adds one unit to a line
func (c *Client) IncreaseCart(ctx context.Context, cred integration.Credential, productID string) error {
	return c.patchLine(ctx, "/api/increasedCart", cred, productID)
}

// DecreaseCart removes one unit from a line
func (c *Client) DecreaseCart(ctx context.Context, cred integration.Credential, productID string) error {
	return c.patchLine(ctx, "/api/decreasedCart", cred, productID)
}

// DeleteCart removes a line
func (c *Client) DeleteCart(ctx context.Context, cred integration.Credential, productID string) error {
	return c.patchLine(ctx, "/api/deletedCart", cred, productID)
}

func (c *Client) patchLine(ctx context.Context, path string, cred integration.Credential, productID string) error {
	_, err := c.do(ctx, call{
		method: http.MethodPatch,
		path:   path,
		cred:   &cred,
		body:   cartLineRequest{Phone: cred.Phone, ID: productID},
	})
	return err
}
