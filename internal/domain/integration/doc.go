// Package integration contains the ports to the store backend, the remote
// commerce service that owns users, carts, products and orders.
//
// Key concepts:
//   - AuthBackend: OTP issuance and verification, address capture
//   - AccountBackend: shopper profile and order history
//   - CartBackend: the canonical cart and its mutations
//   - OrderBackend: order creation and confirmation messages
//   - CatalogBackend: categories, products and specials
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
