package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/storefront/internal/models"
	"github.com/mmynk/storefront/internal/storage"
)

const itemColumns = `id, title, description, price, images, category, stock, rating,
	discountPercentage, brand, sku, warrantyInformation, shippingInformation, reviews`

// InsertItemIfAbsent inserts an item with INSERT OR IGNORE semantics keyed by id.
// An existing row is never overwritten.
func (s *SQLiteStore) InsertItemIfAbsent(ctx context.Context, item *models.Item) (bool, error) {
	images, err := jsonColumn(item.Images)
	if err != nil {
		return false, fmt.Errorf("failed to encode images of item %d: %w", item.ID, err)
	}
	reviews, err := jsonColumn(item.Reviews)
	if err != nil {
		return false, fmt.Errorf("failed to encode reviews of item %d: %w", item.ID, err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Title,
		item.Description,
		item.Price,
		images,
		nullable(item.Category),
		item.Stock,
		nullable(item.Rating),
		nullable(item.DiscountPercentage),
		nullable(item.Brand),
		nullable(item.SKU),
		nullable(item.WarrantyInformation),
		nullable(item.ShippingInformation),
		reviews,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert item %d: %w", item.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// GetItem retrieves an item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?",
		id,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems returns items ordered by ID, optionally restricted to a category.
func (s *SQLiteStore) ListItems(ctx context.Context, filter storage.ItemFilter) ([]*models.Item, error) {
	var (
		query strings.Builder
		args  []interface{}
	)
	query.WriteString("SELECT " + itemColumns + " FROM items")
	if filter.Category != "" {
		query.WriteString(" WHERE category = ?")
		args = append(args, filter.Category)
	}
	query.WriteString(" ORDER BY id")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	} else if filter.Offset > 0 {
		query.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// CountItems counts items, optionally restricted to a category.
func (s *SQLiteStore) CountItems(ctx context.Context, category string) (int, error) {
	var (
		count int
		err   error
	)
	if category == "" {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items WHERE category = ?", category).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// ListCategories returns the distinct categories present in the catalog.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT category FROM items WHERE category IS NOT NULL AND category != '' ORDER BY category",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item                                     models.Item
		images, reviews                          sql.NullString
		category, brand, sku, warranty, shipping sql.NullString
		rating, discount                         sql.NullFloat64
	)
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Price,
		&images,
		&category,
		&item.Stock,
		&rating,
		&discount,
		&brand,
		&sku,
		&warranty,
		&shipping,
		&reviews,
	)
	if err != nil {
		return nil, err
	}

	item.Category = optionalString(category)
	item.Brand = optionalString(brand)
	item.SKU = optionalString(sku)
	item.WarrantyInformation = optionalString(warranty)
	item.ShippingInformation = optionalString(shipping)
	if rating.Valid {
		item.Rating = &rating.Float64
	}
	if discount.Valid {
		item.DiscountPercentage = &discount.Float64
	}
	if images.Valid {
		item.Images = json.RawMessage(images.String)
	}
	if reviews.Valid {
		item.Reviews = json.RawMessage(reviews.String)
	}

	return &item, nil
}

func optionalString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// jsonColumn stores raw JSON text as is. nil becomes NULL.
func jsonColumn(raw json.RawMessage) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("invalid JSON")
	}
	return string(raw), nil
}
