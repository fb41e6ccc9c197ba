package shopee

// itemDetailResponse is the envelope of get_item_detail
type itemDetailResponse struct {
	apiError
	Response *struct {
		Item *wireItem `json:"item"`
	} `json:"response"`
}

// searchResponse is the envelope of item search
type searchResponse struct {
	apiError
	Response *struct {
		Items      []searchItem `json:"items"`
		TotalCount flexInt      `json:"total_count"`
	} `json:"response"`
}

// affiliateResponse is the envelope of generate_short_link
type affiliateResponse struct {
	apiError
	Response *struct {
		ShortLink string `json:"short_link"`
	} `json:"response"`
}

type affiliateRequest struct {
	OriginURL string   `json:"origin_url"`
	SubIDs    []string `json:"sub_ids"`
}

// wireItem is an item as sent by the API. Prices are integer currency units
// times 100000.
type wireItem struct {
	ItemID              flexInt      `json:"item_id"`
	ShopID              flexInt      `json:"shop_id"`
	Name                string       `json:"name"`
	ItemName            string       `json:"item_name"`
	Description         string       `json:"description"`
	Price               flexInt      `json:"price"`
	PriceBeforeDiscount flexInt      `json:"price_before_discount"`
	RawDiscount         *flexInt     `json:"raw_discount"`
	Discount            *flexPercent `json:"discount"`
	Stock               flexInt      `json:"stock"`
	HistoricalSold      *flexInt     `json:"historical_sold"`
	Sold                flexInt      `json:"sold"`
	ItemRating          *wireRating  `json:"item_rating"`
	ShopName            string       `json:"shop_name"`
	ShopRating          flexFloat    `json:"shop_rating"`
	Image               string       `json:"image"`
	Images              []string     `json:"images"`
	Categories          categoryList `json:"categories"`
}

type wireRating struct {
	RatingStar  flexFloat `json:"rating_star"`
	RatingCount []flexInt `json:"rating_count"`
}

// searchItem is a search hit. Some listings nest the fields in item_basic.
type searchItem struct {
	wireItem
	ItemBasic *wireItem `json:"item_basic"`
}

func (s *searchItem) item() *wireItem {
	if s.ItemBasic != nil {
		return s.ItemBasic
	}
	return &s.wireItem
}
