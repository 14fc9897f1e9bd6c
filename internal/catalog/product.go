package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/storefront/internal/models"
)

var (
	errMissingPrice = errors.New("price is missing")
	errMissingID    = errors.New("id is missing")
	errNotArray     = errors.New("not a JSON array")
)

// product is one element of the remote products array. Optional fields are
// pointers so "absent" can be told apart from a zero value. Numbers go through
// json.Number so 3 and 3.0 are the same value.
type product struct {
	ID                  *json.Number    `json:"id"`
	Title               *string         `json:"title"`
	Description         *string         `json:"description"`
	Price               json.RawMessage `json:"price"`
	Images              json.RawMessage `json:"images"`
	Category            *string         `json:"category"`
	Stock               *json.Number    `json:"stock"`
	Rating              *float64        `json:"rating"`
	DiscountPercentage  *float64        `json:"discountPercentage"`
	Brand               *string         `json:"brand"`
	SKU                 *string         `json:"sku"`
	WarrantyInformation *string         `json:"warrantyInformation"`
	ShippingInformation *string         `json:"shippingInformation"`
	Reviews             json.RawMessage `json:"reviews"`

	id int64
}

// parseProduct decodes one row. When the row is malformed the returned id is
// best effort (0 if unknown).
func parseProduct(raw json.RawMessage) (*product, int64, error) {
	var p product
	if err := json.Unmarshal(raw, &p); err != nil {
		var head struct {
			ID json.Number `json:"id"`
		}
		_ = json.Unmarshal(raw, &head)
		id, _ := parseInteger(head.ID)
		return nil, id, err
	}
	if p.ID == nil {
		return &p, 0, errMissingID
	}
	id, err := parseInteger(*p.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid id %s: %w", p.ID.String(), err)
	}
	p.id = id
	return &p, id, nil
}

// toItem converts the decoded row into a storable Item. Only id and price are
// required; missing text fields become "" and a missing stock becomes 0 so
// the NOT NULL columns still hold.
func (p *product) toItem() (*models.Item, Reason, error) {
	price, err := parsePrice(p.Price)
	if err != nil {
		return nil, ReasonInvalidPrice, fmt.Errorf("invalid price value for item with id %d: %w", p.id, err)
	}

	var stock int64
	if p.Stock != nil {
		if stock, err = parseInteger(*p.Stock); err != nil {
			return nil, ReasonInvalidRow, fmt.Errorf("invalid stock for item with id %d: %w", p.id, err)
		}
	}

	images, err := jsonArray(p.Images)
	if err != nil {
		return nil, ReasonInvalidRow, fmt.Errorf("invalid images for item with id %d: %w", p.id, err)
	}
	reviews, err := jsonArray(p.Reviews)
	if err != nil {
		return nil, ReasonInvalidRow, fmt.Errorf("invalid reviews for item with id %d: %w", p.id, err)
	}

	return &models.Item{
		ID:                  p.id,
		Title:               deref(p.Title),
		Description:         deref(p.Description),
		Price:               price,
		Images:              images,
		Category:            p.Category,
		Stock:               stock,
		Rating:              p.Rating,
		DiscountPercentage:  p.DiscountPercentage,
		Brand:               p.Brand,
		SKU:                 p.SKU,
		WarrantyInformation: p.WarrantyInformation,
		ShippingInformation: p.ShippingInformation,
		Reviews:             reviews,
	}, ReasonNone, nil
}

// parsePrice accepts a JSON number or a numeric string ("9.99").
func parsePrice(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, errMissingPrice
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// parseInteger accepts any number with an integral value that fits in int64.
func parseInteger(n json.Number) (int64, error) {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s is not an integer", n)
	}
	b := d.BigInt()
	if !b.IsInt64() {
		return 0, fmt.Errorf("%s is out of range", n)
	}
	return b.Int64(), nil
}

// jsonArray returns a compacted copy of raw when it is a JSON array, and nil
// when it is absent or null. Elements are kept as received.
func jsonArray(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '[' {
		return nil, errNotArray
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
