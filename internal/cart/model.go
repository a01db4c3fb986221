package cart

import "time"

// Line is one (product, size) entry in a cart. Name, Images and PriceAtAdded
// are snapshots taken from the catalog when the line was created; they are
// not refreshed when more quantity is merged in, so the first-add price
// holds until the line is removed.
type Line struct {
	ProductID    string   `json:"productId"`
	Name         string   `json:"name"`
	Images       []string `json:"images"`
	Size         string   `json:"size"`
	Quantity     int      `json:"quantity"`
	PriceAtAdded float64  `json:"priceAtAdded"`
}

type Cart struct {
	ID            string    `json:"cartId"`
	CustomerID    string    `json:"customerId"`
	Lines         []Line    `json:"lines"`
	PromotionCode string    `json:"promotionCode,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LineKey identifies a line by its consolidation key.
type LineKey struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
}
