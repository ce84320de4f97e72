package models

import (
	"time"

	"github.com/google/uuid"
)

// DelegateStatus tracks the invitation lifecycle.
const (
	DelegateStatusInvited    = "invited"
	DelegateStatusRegistered = "registered"
)

// Delegate is an invited conference participant.
type Delegate struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Status    string    `json:"status"`
	InvitedBy uuid.UUID `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DelegateInvitation is a unique registration-link token for a delegate.
type DelegateInvitation struct {
	ID         uuid.UUID  `json:"id"`
	DelegateID uuid.UUID  `json:"delegate_id"`
	Token      string     `json:"token"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
