package handler

import (
	catalogapp "github.com/albazaar/storefront/internal/application/catalog"
	"github.com/albazaar/storefront/internal/domain/catalog"
	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the public catalog. No session is required.
type CatalogHandler struct {
	BaseHandler
	catalog *catalogapp.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *catalogapp.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// SubcategoryRequest selects the parent category
type SubcategoryRequest struct {
	Category string `form:"category" binding:"required,notblank"`
}

// ListCategories returns the top-level categories
// GET /api/v1/catalog/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// ListSubcategories returns the subcategories of a category
// GET /api/v1/catalog/subcategories?category=
func (h *CatalogHandler) ListSubcategories(c *gin.Context) {
	var req SubcategoryRequest
	if !h.BindQuery(c, &req) {
		return
	}
	subcategories, err := h.catalog.Subcategories(c.Request.Context(), req.Category)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subcategories)
}

// ListProducts returns one page of products
// GET /api/v1/catalog/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var req dto.PageRequest
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.catalog.Products(c.Request.Context(), catalog.ProductQuery{
		Page:        req.Page,
		Limit:       req.Limit,
		Category:    req.Category,
		Subcategory: req.Subcategory,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Products, page.Page, page.Limit, page.HasMore)
}

// GetProduct returns one product
// GET /api/v1/catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}
	product, err := h.catalog.Product(c.Request.Context(), uri.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListSpecials returns the specials shelf
// GET /api/v1/catalog/specials
func (h *CatalogHandler) ListSpecials(c *gin.Context) {
	products, err := h.catalog.Specials(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}
