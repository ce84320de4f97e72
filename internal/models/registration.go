package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RegistrationCategory is one selectable ticket category for an attendance type.
// Fee is the display string from the organizers, e.g. "USD 150" or "FREE";
// parsing lives in internal/payments.
type RegistrationCategory struct {
	ID               uuid.UUID  `json:"id"`
	NameEnglish      string     `json:"name_english"`
	NameFrench       string     `json:"name_french,omitempty"`
	Fee              string     `json:"fee"`
	AttendanceType   string     `json:"attendence_type"`
	EarlyPaymentDate *time.Time `json:"early_payment_date,omitempty"`
	EndDate          time.Time  `json:"end_date"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Registration is a completed conference registration.
// Answers holds the serialized dynamic-form answer array; the four payment
// fields are stored empty when the selected category required no payment.
type Registration struct {
	ID             uuid.UUID       `json:"id"`
	UserID         *uuid.UUID      `json:"user_id,omitempty"`
	CategoryID     uuid.UUID       `json:"ticket_id"`
	AttendanceType string          `json:"attendence_type"`
	UserLanguage   string          `json:"user_language"`
	Accompanied    bool            `json:"accompanied"`
	Answers        json.RawMessage `json:"delegate_data,omitempty"`
	OrderID        string          `json:"order_id"`
	PaymentToken   string          `json:"payment_token"`
	PaymentSession string          `json:"payment_session"`
	Acknowledgment string          `json:"acknowleadgment"` // transaction id; spelling is the wire contract
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FormSchema stores the backend-defined registration form for one
// attendance type as raw grouped-input JSON, decoded by internal/forms.
type FormSchema struct {
	ID             uuid.UUID       `json:"id"`
	AttendanceType string          `json:"attendence_type"`
	Groups         json.RawMessage `json:"groups"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
