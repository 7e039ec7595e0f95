package backend

import (
	"context"
	"net/http"

	"github.com/albazaar/storefront/internal/domain/identity"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/order"
)

// GetUser fetches the shopper profile
func (c *Client) GetUser(ctx context.Context, cred integration.Credential) (identity.UserProfile, error) {
	body, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   credPath("/api/getUser/", cred),
		cred:   &cred,
	})
	if err != nil {
		return identity.UserProfile{}, err
	}
	if isNull(body) {
		return identity.UserProfile{}, integration.ErrBackendNotFound
	}

	var user userPayload
	if err := decode(body, &user); err != nil {
		return identity.UserProfile{}, err
	}
	return toProfile(user, cred.Phone), nil
}

// UpdateUser saves name and address and returns the stored profile. When
// the backend does not echo the user back, the submitted profile is
// returned.
func (c *Client) UpdateUser(ctx context.Context, cred integration.Credential, profile identity.UserProfile) (identity.UserProfile, error) {
	phone := profile.Phone
	if phone == "" {
		phone = cred.Phone
	}
	body, err := c.do(ctx, call{
		method: http.MethodPut,
		path:   "/api/edit/user",
		cred:   &cred,
		body: userPayload{
			Phone: phone,
			Name:  profile.Name,
			Addr:  profile.FullAddress(),
		},
	})
	if err != nil {
		return identity.UserProfile{}, err
	}

	var user userPayload
	if isNull(body) || decode(body, &user) != nil || (user.Name == "" && user.Addr == "") {
		profile.Phone = phone
		return profile, nil
	}
	return toProfile(user, phone), nil
}

// GetOrders lists the shopper's orders in backend order
func (c *Client) GetOrders(ctx context.Context, cred integration.Credential) ([]order.Order, error) {
	body, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   credPath("/api/getOrder/", cred),
		cred:   &cred,
	})
	if err != nil {
		return nil, err
	}
	if isNull(body) {
		return []order.Order{}, nil
	}

	var orders []order.Order
	if err := decode(body, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func toProfile(u userPayload, fallbackPhone string) identity.UserProfile {
	phone := u.Phone
	if phone == "" {
		phone = fallbackPhone
	}
	return identity.UserProfile{
		Name:    u.Name,
		Phone:   phone,
		Address: u.Addr,
	}
}
