package model

import (
	"time"

	"github.com/google/uuid"
)

// Auth is the external authentication identity. Application data lives on the
// User profile, joined by AuthID.
type Auth struct {
	AuthID       uuid.UUID  `json:"authid"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never JSON-encode
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}
