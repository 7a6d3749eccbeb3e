package site

import "github.com/shopspring/decimal"

// Size is a purchasable size with its displayed stock count.
type Size struct {
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

// Available reports whether the size can be selected.
func (s Size) Available() bool {
	return s.Stock >= 1
}

// Color is a colour variant with its product photo.
type Color struct {
	Label string `json:"label"`
	Image string `json:"image"`
}

// Product is a merch item. Stock counts are display data only.
type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	CheckoutURL  string          `json:"checkoutUrl"`
	Sizes        []Size          `json:"sizes"`
	Colors       []Color         `json:"colors"`
	DefaultColor string          `json:"defaultColor"`
}

// DisplayPrice renders the price the way the store shows it, e.g. "EUR 21.99".
func (p Product) DisplayPrice() string {
	return p.Currency + " " + p.Price.StringFixed(2)
}

// Variant returns the colour variant labelled label, falling back to the first one.
func (p Product) Variant(label string) Color {
	for _, c := range p.Colors {
		if c.Label == label {
			return c
		}
	}
	if len(p.Colors) == 0 {
		return Color{}
	}
	return p.Colors[0]
}

// Catalog is the merch store content.
type Catalog struct {
	StoreEnabled bool      `json:"storeEnabled"`
	Products     []Product `json:"products"`
}

const checkoutURL = "https://buy.stripe.com/dRm28j59dbKCdSF4wI8EM00"

// DefaultCatalog returns the current store content. The store is not open
// yet, so checkout is disabled.
func DefaultCatalog() Catalog {
	return Catalog{
		StoreEnabled: false,
		Products: []Product{
			{
				ID:          "tee-dustborn",
				Title:       "Dustborn Shirt",
				Description: "Premium cotton, unisex. Sizes S-XXL.",
				Price:       decimal.RequireFromString("21.99"),
				Currency:    "EUR",
				CheckoutURL: checkoutURL,
				Sizes: []Size{
					{Label: "S", Stock: 12},
					{Label: "M", Stock: 8},
					{Label: "L", Stock: 0},
					{Label: "XL", Stock: 6},
					{Label: "XXL", Stock: 2},
				},
				Colors: []Color{
					{Label: "Yellow", Image: "/assets/images/merch1-yellow.jpeg"},
					{Label: "Black", Image: "/assets/images/merch1-black.jpeg"},
					{Label: "White", Image: "/assets/images/merch1-white.jpeg"},
				},
				DefaultColor: "Yellow",
			},
			{
				ID:          "totebag-classic",
				Title:       "Dustborn Totebag",
				Description: "Sturdy cotton tote. One size.",
				Price:       decimal.RequireFromString("14.99"),
				Currency:    "EUR",
				CheckoutURL: checkoutURL,
				Sizes:       []Size{{Label: "One Size", Stock: 25}},
				Colors: []Color{
					{Label: "Natural", Image: "/assets/images/merch2-natural.png"},
					{Label: "Black", Image: "/assets/images/merch2-black.png"},
					{Label: "White", Image: "/assets/images/merch2-white.png"},
				},
				DefaultColor: "Natural",
			},
			{
				ID:          "tee-longsleeve",
				Title:       "Dead Gravel Longsleeve Shirt",
				Description: "Soft heavyweight cotton, ribbed cuffs.",
				Price:       decimal.RequireFromString("29.99"),
				Currency:    "EUR",
				CheckoutURL: checkoutURL,
				Sizes: []Size{
					{Label: "S", Stock: 0},
					{Label: "M", Stock: 7},
					{Label: "L", Stock: 7},
					{Label: "XL", Stock: 7},
					{Label: "XXL", Stock: 1},
				},
				Colors: []Color{
					{Label: "Black", Image: "/assets/images/merch3-black.jpeg"},
					{Label: "White", Image: "/assets/images/merch3-white.jpeg"},
					{Label: "Pink", Image: "/assets/images/merch3-pink.jpeg"},
				},
				DefaultColor: "Black",
			},
		},
	}
}
