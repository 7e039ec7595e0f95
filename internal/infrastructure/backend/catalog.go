package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/albazaar/storefront/internal/domain/catalog"
	"github.com/albazaar/storefront/internal/domain/integration"
)

// Categories lists the top-level categories
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	return c.categoryList(ctx, "/api/category")
}

// CategoryTree lists categories with their subcategories
func (c *Client) CategoryTree(ctx context.Context) ([]catalog.Category, error) {
	return c.categoryList(ctx, "/api/subcategory")
}

func (c *Client) categoryList(ctx context.Context, path string) ([]catalog.Category, error) {
	body, err := c.do(ctx, call{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	if isNull(body) {
		return []catalog.Category{}, nil
	}

	var categories []catalog.Category
	if err := decode(body, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Products fetches one page of products
func (c *Client) Products(ctx context.Context, query catalog.ProductQuery) ([]catalog.Product, error) {
	query = query.Normalize()
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("limit", strconv.Itoa(query.Limit))
	params.Set("category", query.Category)
	params.Set("subcategory", query.Subcategory)

	body, err := c.do(ctx, call{method: http.MethodGet, path: "/api/productPage", query: params})
	if err != nil {
		return nil, err
	}
	if isNull(body) {
		return []catalog.Product{}, nil
	}

	var page productPageResponse
	if err := decode(body, &page); err != nil {
		return nil, err
	}
	if page.Products == nil {
		return []catalog.Product{}, nil
	}
	return page.Products, nil
}

// Product fetches one product from the product API
func (c *Client) Product(ctx context.Context, id string) (catalog.Product, error) {
	body, err := c.do(ctx, call{
		method: http.MethodGet,
		base:   c.config.ProductBaseURL,
		path:   "/api/product/" + url.PathEscape(id),
	})
	if err != nil {
		return catalog.Product{}, err
	}
	if isNull(body) {
		return catalog.Product{}, integration.ErrBackendNotFound
	}

	var p catalog.Product
	if err := decode(body, &p); err != nil {
		return catalog.Product{}, err
	}
	if p.ID == "" {
		return catalog.Product{}, integration.ErrBackendNotFound
	}
	return p, nil
}

// Specials lists the products on sale
func (c *Client) Specials(ctx context.Context) ([]catalog.Product, error) {
	body, err := c.do(ctx, call{method: http.MethodGet, path: "/api/get/special"})
	if err != nil {
		return nil, err
	}
	if isNull(body) {
		return []catalog.Product{}, nil
	}

	var resp specialsResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []catalog.Product{}, nil
	}
	return resp.Data, nil
}
