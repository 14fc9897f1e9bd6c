// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/storefront/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ItemFilter narrows ListItems. Zero values mean "no restriction";
// a zero Limit returns every matching row.
type ItemFilter struct {
	Category string
	Limit    int
	Offset   int
}

// ItemStore is the catalog side of the store.
type ItemStore interface {
	// InsertItemIfAbsent inserts the item unless a row with the same ID exists.
	// inserted is false (with a nil error) when the row was already present;
	// the existing row is left untouched.
	InsertItemIfAbsent(ctx context.Context, item *models.Item) (inserted bool, err error)

	// GetItem retrieves an item by its ID. Returns ErrNotFound if absent.
	GetItem(ctx context.Context, id int64) (*models.Item, error)

	// ListItems returns items ordered by ID.
	ListItems(ctx context.Context, filter ItemFilter) ([]*models.Item, error)

	// CountItems returns the number of items matching the category ("" for all).
	CountItems(ctx context.Context, category string) (int, error)

	// ListCategories returns the distinct non-null categories, sorted.
	ListCategories(ctx context.Context) ([]string, error)
}

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail and GetUserByID return ErrNotFound if the user doesn't exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store defines the interface for storefront storage operations.
// This abstraction allows swapping storage backends without changing the
// importer, the web pages or the RPC services.
type Store interface {
	ItemStore
	UserStore

	// ListCart returns every cart entry ordered by ID.
	ListCart(ctx context.Context) ([]models.CartEntry, error)

	// ListHistory returns every purchase history entry ordered by ID.
	ListHistory(ctx context.Context) ([]models.HistoryEntry, error)

	// Ping checks that the underlying database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
