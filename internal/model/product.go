package model

// LabeledValue is one row of a product detail table.
type LabeledValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ScrapedProduct is the normalized result of a scrape. RawData keeps the
// unwrapped payload exactly as the backend returned it.
type ScrapedProduct struct {
	ASIN        string   `json:"asin"`
	Title       string   `json:"title"`
	Brand       string   `json:"brand"`
	URL         string   `json:"url"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
	Description string   `json:"description"`

	ProductDetails       map[string]any `json:"productDetails"`
	ManufacturingDetails map[string]any `json:"manufacturingDetails"`
	AdditionalInfo       map[string]any `json:"additionalInfo"`

	ProductDetailsArray       []LabeledValue `json:"productDetailsArray"`
	ManufacturingDetailsArray []LabeledValue `json:"manufacturingDetailsArray"`
	AdditionalInfoArray       []LabeledValue `json:"additionalInfoArray"`

	RawData any `json:"rawData"`
}
