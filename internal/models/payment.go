package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus for payment attempts.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
)

// PaymentAttempt records one hosted-checkout session and its terminal outcome.
// SessionID and Token come from the gateway at session creation and are
// immutable afterwards; TransactionID is set only on verified completion.
type PaymentAttempt struct {
	ID            uuid.UUID  `json:"id"`
	OrderID       string     `json:"order_id"`
	SessionID     string     `json:"session_id"`
	Token         string     `json:"-"` // anti-tamper check value, never exposed
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
