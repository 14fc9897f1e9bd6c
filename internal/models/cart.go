package models

// CartEntry is one line in the shopping cart.
type CartEntry struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	Image       string  `json:"image"`
}

// Subtotal is Price multiplied by Quantity.
func (e CartEntry) Subtotal() float64 {
	return e.Price * float64(e.Quantity)
}

// HistoryEntry is one purchased line in the purchase history.
// It has the same shape as CartEntry but lives in its own table.
type HistoryEntry CartEntry

// Subtotal is Price multiplied by Quantity.
func (e HistoryEntry) Subtotal() float64 {
	return CartEntry(e).Subtotal()
}
