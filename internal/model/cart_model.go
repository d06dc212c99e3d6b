package model

import "github.com/shopspring/decimal"

// Product types sold by the store.
const (
	ProductTypePDF  = "pdf"
	ProductTypeExam = "exam"
)

// CartItem is one staged line in a user's cart. Prices are stored normalized:
// every price-like input is coerced to a decimal at add time, so readers never
// see a missing or non-numeric price. Items are unique by (ProductID, Type).
type CartItem struct {
	ProductID string `json:"_id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Quantity  int    `json:"quantity"`

	DumpsPriceINR decimal.Decimal `json:"dumpsPriceInr"`
	DumpsPriceUSD decimal.Decimal `json:"dumpsPriceUsd"`
	ExamPriceINR  decimal.Decimal `json:"onlineExamPriceInr"`
	ExamPriceUSD  decimal.Decimal `json:"onlineExamPriceUsd"`
	Price         decimal.Decimal `json:"price"`
}

// Cart is a per-user staging area, persisted under a schema version tag.
// An incompatible version is discarded rather than migrated.
type Cart struct {
	Version int        `json:"version"`
	Items   []CartItem `json:"items"`
}

// CartResponse is returned when calling GET /cart.
type CartResponse struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Currency  string          `json:"currency"`
}
