package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// Order is the server-authoritative purchase record. Line items are snapshots
// taken at creation time and are never re-read from the product catalog.
type Order struct {
	OrderID          uuid.UUID       `json:"orderid"`
	OrderNumber      string          `json:"order_number"`
	UserID           uuid.UUID       `json:"userid"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Currency         string          `json:"currency"`
	PaymentMethod    string          `json:"payment_method"`
	GatewayPaymentID string          `json:"payment_id"`
	Status           string          `json:"status"`
	PurchaseDate     time.Time       `json:"purchase_date"`
	Items            []OrderItem     `json:"items,omitempty"`
}

// OrderItem is an audit-grade snapshot of a product at purchase time.
type OrderItem struct {
	OrderItemID  int64           `json:"orderitemid"`
	OrderID      uuid.UUID       `json:"orderid"`
	ProductID    uuid.UUID       `json:"productid"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Category     string          `json:"category,omitempty"`
	ExamCode     string          `json:"exam_code,omitempty"`
	SKU          string          `json:"sku,omitempty"`
	SamplePdfURL string          `json:"sample_pdf_url,omitempty"`
	MainPdfURL   string          `json:"main_pdf_url,omitempty"`
	Slug         string          `json:"slug,omitempty"`
}
