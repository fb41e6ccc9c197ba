// Package product holds the canonical marketplace types returned by the
// lookup pipeline.
package product

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ref identifies one listing: the shop (marketplace) id and the item id.
type Ref struct {
	MarketplaceID int64 `json:"marketplace_id"`
	ItemID        int64 `json:"item_id"`
}

// NewRef returns a Ref, rejecting negative ids.
func NewRef(marketplaceID, itemID int64) (Ref, error) {
	if marketplaceID < 0 || itemID < 0 {
		return Ref{}, fmt.Errorf("negative id in %d.%d", marketplaceID, itemID)
	}
	return Ref{MarketplaceID: marketplaceID, ItemID: itemID}, nil
}

// String returns the "shop.item" form used in logs and cache keys.
func (r Ref) String() string {
	return fmt.Sprintf("%d.%d", r.MarketplaceID, r.ItemID)
}

// Product is the canonical product record. Prices are decimal store-currency
// units.
type Product struct {
	ID              int64           `json:"id"`
	ShopID          int64           `json:"shop_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent int             `json:"discount_percent"`
	Stock           int             `json:"stock"`
	SalesCount      int             `json:"sales_count"`
	Rating          float64         `json:"rating"`
	RatingCount     int             `json:"rating_count"`
	ShopName        string          `json:"shop_name"`
	ShopRating      float64         `json:"shop_rating"`
	Images          []string        `json:"images"`
	Categories      []string        `json:"categories"`
	Link            string          `json:"link"`
}

// Ref returns the listing reference of p.
func (p *Product) Ref() Ref {
	return Ref{MarketplaceID: p.ShopID, ItemID: p.ID}
}

// Summary is the subset of Product present in search listings.
type Summary struct {
	ID              int64           `json:"id"`
	ShopID          int64           `json:"shop_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent int             `json:"discount_percent"`
	SalesCount      int             `json:"sales_count"`
	Rating          float64         `json:"rating"`
	Image           string          `json:"image"`
	Link            string          `json:"link"`
}

var hundred = decimal.NewFromInt(100)

// DiscountPercent derives the discount as round(100*(original-price)/original)
// when original > price > 0, and 0 otherwise. Halves round to even.
func DiscountPercent(price, original decimal.Decimal) int {
	if !price.IsPositive() || !original.GreaterThan(price) {
		return 0
	}
	pct := original.Sub(price).Mul(hundred).Div(original).RoundBank(0).IntPart()
	return ClampPercent(int(pct))
}

// ClampPercent bounds v to 0-100.
func ClampPercent(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
