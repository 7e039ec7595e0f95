// Package catalog contains the read-only product catalog as served by the
// store backend: categories with their subcategories, products and paging.
package catalog
