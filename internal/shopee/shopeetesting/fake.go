// Package shopeetesting provides fake partner API payloads and a fake API
// server for tests.
package shopeetesting

import (
	"math/rand"

	"github.com/go-faker/faker/v4"
	"github.com/samber/lo"
)

// Item mirrors the item object of the partner API.
type Item struct {
	ItemID              int64    `json:"item_id"`
	ShopID              int64    `json:"shop_id"`
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Price               int64    `json:"price"`
	PriceBeforeDiscount int64    `json:"price_before_discount"`
	Stock               int      `json:"stock"`
	HistoricalSold      int      `json:"historical_sold"`
	ItemRating          Rating   `json:"item_rating"`
	ShopName            string   `json:"shop_name"`
	ShopRating          float64  `json:"shop_rating"`
	Images              []string `json:"images"`
	Categories          []string `json:"categories"`
}

// Rating mirrors item_rating.
type Rating struct {
	RatingStar  float64 `json:"rating_star"`
	RatingCount []int   `json:"rating_count"`
}

// FakeItem returns an Item with fake text and random ids. Prices are fixed
// at 80.00 and 100.00 in micro units so discounts are predictable.
func FakeItem(ops ...func(i *Item)) Item {
	item := Item{
		ItemID:              rand.Int63n(1_000_000_000) + 1,
		ShopID:              rand.Int63n(1_000_000) + 1,
		Name:                faker.Sentence(),
		Description:         faker.Paragraph(),
		Price:               8_000_000,
		PriceBeforeDiscount: 10_000_000,
		Stock:               rand.Intn(500),
		HistoricalSold:      rand.Intn(10_000),
		ItemRating: Rating{
			RatingStar:  4.5,
			RatingCount: []int{rand.Intn(1000) + 1},
		},
		ShopName:   faker.Name(),
		ShopRating: 4.8,
		Images:     fakeImageHashes(),
		Categories: []string{faker.Word(), faker.Word()},
	}

	for _, op := range ops {
		op(&item)
	}

	return item
}

// ItemDetail wraps item in a get_item_detail envelope.
func ItemDetail(item Item) map[string]interface{} {
	return map[string]interface{}{
		"error":   "",
		"message": "",
		"response": map[string]interface{}{
			"item": item,
		},
	}
}

// SearchResult wraps items in a search envelope.
func SearchResult(items ...Item) map[string]interface{} {
	return map[string]interface{}{
		"error":   "",
		"message": "",
		"response": map[string]interface{}{
			"items":       lo.Ternary(items == nil, []Item{}, items),
			"total_count": len(items),
		},
	}
}

// ShortLink wraps link in a generate_short_link envelope.
func ShortLink(link string) map[string]interface{} {
	return map[string]interface{}{
		"error": "",
		"response": map[string]interface{}{
			"short_link": link,
		},
	}
}

// ErrorPayload is an envelope carrying an API error code.
func ErrorPayload(code, message string) map[string]interface{} {
	return map[string]interface{}{
		"error":   code,
		"message": message,
	}
}

func fakeImageHashes() []string {
	n := rand.Intn(3) + 1
	return lo.Times(n, func(_ int) string {
		return faker.UUIDDigit()
	})
}
