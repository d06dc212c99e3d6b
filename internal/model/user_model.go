package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscription / role values gating access to paid content.
const (
	SubscriptionYes = "yes"
	SubscriptionNo  = "no"

	RoleGuest   = "guest"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User is the internal profile record, keyed by the external auth identity.
// This is also the sanitized shape returned by the payment verifiers.
type User struct {
	UserID       uuid.UUID  `json:"id"`
	AuthID       uuid.UUID  `json:"authid"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Subscription string     `json:"subscription"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}
