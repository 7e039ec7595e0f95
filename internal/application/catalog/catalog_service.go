package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/albazaar/storefront/internal/domain/catalog"
	"github.com/albazaar/storefront/internal/domain/integration"
	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/cache"
	"github.com/albazaar/storefront/internal/infrastructure/logger"
	"github.com/albazaar/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrProductNotFound is returned for unknown product ids
var ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")

// CatalogService proxies the public catalog through a read-through cache
type CatalogService struct {
	backend integration.CatalogBackend
	cache   *cache.CatalogCache
	logger  *zap.Logger
}

// NewCatalogService creates a new catalog service. A nil cache disables
// caching.
func NewCatalogService(backend integration.CatalogBackend, catalogCache *cache.CatalogCache, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		backend: backend,
		cache:   catalogCache,
		logger:  logger,
	}
}

// Categories lists the top-level categories
func (s *CatalogService) Categories(ctx context.Context) ([]catalog.Category, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CatalogService", "Categories")
	defer span.End()

	categories, err := cache.Remember(ctx, s.cache, "categories", s.backend.Categories)
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("Failed to load categories", zap.Error(err))
		return nil, err
	}
	return categories, nil
}

// Subcategories lists categories with their subcategories. A non-empty
// categoryID narrows the result to that category's subcategories.
func (s *CatalogService) Subcategories(ctx context.Context, categoryID string) ([]catalog.Subcategory, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CatalogService", "Subcategories")
	defer span.End()

	tree, err := cache.Remember(ctx, s.cache, "category_tree", s.backend.CategoryTree)
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("Failed to load subcategories", zap.Error(err))
		return nil, err
	}

	categoryID = strings.TrimSpace(categoryID)
	subs := make([]catalog.Subcategory, 0)
	for _, c := range tree {
		if categoryID != "" && c.ID != categoryID {
			continue
		}
		for _, sub := range c.Subcategories {
			if sub.Category == "" {
				sub.Category = c.ID
			}
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// Products returns one page of products
func (s *CatalogService) Products(ctx context.Context, query catalog.ProductQuery) (catalog.ProductPage, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CatalogService", "Products")
	defer span.End()

	query = query.Normalize()
	products, err := cache.Remember(ctx, s.cache, query.CacheKey(), func(ctx context.Context) ([]catalog.Product, error) {
		return s.backend.Products(ctx, query)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("Failed to load products", zap.Int("page", query.Page), zap.Error(err))
		return catalog.ProductPage{}, err
	}
	return catalog.NewProductPage(query, products), nil
}

// Product returns one product
func (s *CatalogService) Product(ctx context.Context, id string) (catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CatalogService", "Product",
		telemetry.WithAttribute(telemetry.SpanAttrProductID, id))
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return catalog.Product{}, ErrProductNotFound
	}

	product, err := cache.Remember(ctx, s.cache, "product:"+id, func(ctx context.Context) (catalog.Product, error) {
		return s.backend.Product(ctx, id)
	})
	if errors.Is(err, integration.ErrBackendNotFound) {
		return catalog.Product{}, ErrProductNotFound
	}
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("Failed to load product", zap.String("product_id", id), zap.Error(err))
		return catalog.Product{}, err
	}
	return product, nil
}

// Specials lists products on sale
func (s *CatalogService) Specials(ctx context.Context) ([]catalog.Product, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CatalogService", "Specials")
	defer span.End()

	products, err := cache.Remember(ctx, s.cache, "specials", s.backend.Specials)
	if err != nil {
		telemetry.RecordError(span, err)
		s.log(ctx).Warn("Failed to load specials", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (s *CatalogService) log(ctx context.Context) *zap.Logger {
	return logger.WithLogger(ctx, s.logger)
}
