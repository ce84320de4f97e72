package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailType for portal mail.
const (
	EmailTypeDelegateInvitation       = "delegate_invitation"
	EmailTypeRegistrationConfirmation = "registration_confirmation"
	EmailTypeAbstractDecision         = "abstract_decision"
)

// EmailLogStatus for delivery.
const (
	EmailLogStatusPending = "pending"
	EmailLogStatusSent    = "sent"
	EmailLogStatusFailed  = "failed"
)

// EmailLog records outbound portal emails.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	DelegateID     *uuid.UUID `json:"delegate_id,omitempty"`
	EmailType      string     `json:"email_type"`
	RecipientEmail string     `json:"recipient_email"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
