package models

import "encoding/json"

// Item represents a product in the local catalog.
// IDs are assigned by the remote catalog, not by the store.
type Item struct {
	// ID is the catalog-assigned identifier (unique).
	ID int64 `json:"id"`

	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`

	// Images holds the catalog's JSON array of image URLs as received.
	// nil is stored as NULL.
	Images json.RawMessage `json:"images,omitempty"`

	// Category, Brand, SKU and the information strings are optional.
	// nil is stored as NULL; a present empty string stays "".
	Category            *string `json:"category,omitempty"`
	Stock               int64   `json:"stock"`
	Brand               *string `json:"brand,omitempty"`
	SKU                 *string `json:"sku,omitempty"`
	WarrantyInformation *string `json:"warrantyInformation,omitempty"`
	ShippingInformation *string `json:"shippingInformation,omitempty"`

	// Rating and DiscountPercentage are nil when the catalog omits them.
	Rating             *float64 `json:"rating,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`

	// Reviews holds the catalog's JSON array of reviews as received, with
	// every key the catalog sent. nil is stored as NULL.
	Reviews json.RawMessage `json:"reviews,omitempty"`
}

// ImageURLs decodes Images for display. Elements that are not strings are
// skipped.
func (i *Item) ImageURLs() []string {
	var urls []string
	for _, el := range rawElements(i.Images) {
		var url string
		if err := json.Unmarshal(el, &url); err == nil && url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

// Thumbnail returns the first image URL, or "" when the item has none.
func (i *Item) Thumbnail() string {
	urls := i.ImageURLs()
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// ReviewList decodes Reviews for display. Elements that do not look like a
// review are skipped.
func (i *Item) ReviewList() []Review {
	var reviews []Review
	for _, el := range rawElements(i.Reviews) {
		var r Review
		if err := json.Unmarshal(el, &r); err == nil {
			reviews = append(reviews, r)
		}
	}
	return reviews
}

// Review is the display view of one catalog review.
type Review struct {
	Rating        float64 `json:"rating"`
	Comment       string  `json:"comment"`
	Date          string  `json:"date,omitempty"`
	ReviewerName  string  `json:"reviewerName,omitempty"`
	ReviewerEmail string  `json:"reviewerEmail,omitempty"`
}

func rawElements(list json.RawMessage) []json.RawMessage {
	if len(list) == 0 {
		return nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(list, &elements); err != nil {
		return nil
	}
	return elements
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
