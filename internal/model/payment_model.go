package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods (gateway identifiers).
const (
	PaymentMethodRazorpay = "razorpay"
	PaymentMethodPayPal   = "paypal"
)

// PaymentStatusCompleted is the only status a verifier ever writes; failed
// verifications leave no record at all.
const PaymentStatusCompleted = "completed"

// Payment records a single gateway transaction. Created only after the
// gateway has authoritatively confirmed amount and status; never mutated.
// At most one row exists per (payment_method, gateway_payment_id), enforced
// by a storage-level unique constraint.
type Payment struct {
	PaymentID        uuid.UUID       `json:"payment_id"`
	UserID           uuid.UUID       `json:"userid"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	PaymentMethod    string          `json:"payment_method"`
	GatewayPaymentID string          `json:"gateway_payment_id"`
	GatewayOrderID   *string         `json:"gateway_order_id,omitempty"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}
