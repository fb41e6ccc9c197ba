package shopee

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"sjsage522/divulgador/internal/product"
)

// priceExp converts integer micro units into currency units
const priceExp = -5

func toPrice(v flexInt) decimal.Decimal {
	if v <= 0 {
		return decimal.Zero
	}
	return decimal.New(int64(v), priceExp)
}

// toProduct maps a detail item into a Product. The ref fills ids missing
// from the payload.
func (c *Client) toProduct(item *wireItem, ref product.Ref) *product.Product {
	shopID := lo.Ternary(item.ShopID > 0, int64(item.ShopID), ref.MarketplaceID)
	itemID := lo.Ternary(item.ItemID > 0, int64(item.ItemID), ref.ItemID)

	price := toPrice(item.Price)
	original := toPrice(item.PriceBeforeDiscount)

	p := &product.Product{
		ID:              itemID,
		ShopID:          shopID,
		Name:            itemName(item),
		Description:     item.Description,
		Price:           price,
		OriginalPrice:   original,
		DiscountPercent: discountPercent(item, price, original),
		Stock:           max(int(item.Stock), 0),
		SalesCount:      salesCount(item),
		ShopName:        item.ShopName,
		ShopRating:      toRating(item.ShopRating),
		Images:          c.imageURLs(item),
		Categories:      lo.Ternary(item.Categories == nil, []string{}, []string(item.Categories)),
		Link:            c.canonicalLink(shopID, itemID),
	}

	if item.ItemRating != nil {
		p.Rating = toRating(item.ItemRating.RatingStar)
		if len(item.ItemRating.RatingCount) > 0 {
			p.RatingCount = max(int(item.ItemRating.RatingCount[0]), 0)
		}
	}

	return p
}

// toSummary maps a search hit into the listing subset
func (c *Client) toSummary(item *wireItem) product.Summary {
	price := toPrice(item.Price)
	original := toPrice(item.PriceBeforeDiscount)

	var image string
	if imgs := c.imageURLs(item); len(imgs) > 0 {
		image = imgs[0]
	}

	s := product.Summary{
		ID:              int64(item.ItemID),
		ShopID:          int64(item.ShopID),
		Name:            itemName(item),
		Price:           price,
		OriginalPrice:   original,
		DiscountPercent: discountPercent(item, price, original),
		SalesCount:      salesCount(item),
		Image:           image,
		Link:            c.canonicalLink(int64(item.ShopID), int64(item.ItemID)),
	}
	if item.ItemRating != nil {
		s.Rating = toRating(item.ItemRating.RatingStar)
	}
	return s
}

func itemName(item *wireItem) string {
	return strings.TrimSpace(lo.Ternary(item.Name != "", item.Name, item.ItemName))
}

func salesCount(item *wireItem) int {
	if item.HistoricalSold != nil {
		return max(int(*item.HistoricalSold), 0)
	}
	return max(int(item.Sold), 0)
}

// maxRating is the top of the star scale
const maxRating = 5

func toRating(v flexFloat) float64 {
	return lo.Clamp(float64(v), 0, maxRating)
}

// discountPercent prefers the discount sent by the API and derives it from
// the prices otherwise
func discountPercent(item *wireItem, price, original decimal.Decimal) int {
	switch {
	case item.RawDiscount != nil:
		return product.ClampPercent(int(*item.RawDiscount))
	case item.Discount != nil:
		return product.ClampPercent(int(*item.Discount))
	default:
		return product.DiscountPercent(price, original)
	}
}

// imageURLs turns image hashes into URLs, keeping full URLs and order
func (c *Client) imageURLs(item *wireItem) []string {
	images := item.Images
	if len(images) == 0 && item.Image != "" {
		images = []string{item.Image}
	}

	urls := lo.FilterMap(images, func(img string, _ int) (string, bool) {
		img = strings.TrimSpace(img)
		if img == "" {
			return "", false
		}
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			return img, true
		}
		return c.imageURL + img, true
	})
	return lo.Uniq(urls)
}
