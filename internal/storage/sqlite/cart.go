package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/storefront/internal/models"
)

// ListCart returns every cart entry ordered by ID.
func (s *SQLiteStore) ListCart(ctx context.Context) ([]models.CartEntry, error) {
	entries, err := s.listEntries(ctx, "cart")
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return entries, nil
}

// ListHistory returns every purchase history entry ordered by ID.
func (s *SQLiteStore) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	entries, err := s.listEntries(ctx, "history")
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	history := make([]models.HistoryEntry, len(entries))
	for i, e := range entries {
		history[i] = models.HistoryEntry(e)
	}
	return history, nil
}

// listEntries reads the cart or history table. Both share one column layout.
// table is always a constant from this package, never user input.
func (s *SQLiteStore) listEntries(ctx context.Context, table string) ([]models.CartEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, description, price, quantity, image FROM "+table+" ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.CartEntry
	for rows.Next() {
		var e models.CartEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Price, &e.Quantity, &e.Image); err != nil {
			return nil, fmt.Errorf("failed to scan %s entry: %w", table, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return entries, nil
}
