// Package models defines the core domain models for the storefront.
//
// # Catalog
//
//   - Item: a product mirrored from the remote catalog. Items are written
//     only by the catalog importer and never updated afterwards.
//   - Review: a customer review attached to an Item.
//
// # Shopping
//
//   - CartEntry: a line in the shopping cart.
//   - HistoryEntry: a line in the purchase history.
//
// Both tables exist in the schema and are listed by the web pages, but no
// write path is defined for them yet.
//
// # Accounts
//
//   - User: a registered account used by the password sign-in flow.
package models
