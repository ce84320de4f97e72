package models

import (
	"time"

	"github.com/google/uuid"
)

// AbstractStatus is the review state of a submitted abstract.
type AbstractStatus string

const (
	AbstractStatusPending       AbstractStatus = "pending"
	AbstractStatusApproved      AbstractStatus = "approved"
	AbstractStatusRejected      AbstractStatus = "rejected"
	AbstractStatusMoreInfo      AbstractStatus = "more_info_requested"
)

// Word limits enforced on abstract authoring (HTML-stripped counts).
const (
	AbstractTitleWordLimit = 15
	AbstractBodyWordLimit  = 300
)

// Abstract is a submitted conference abstract.
type Abstract struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	Title            string         `json:"title"`
	Body             string         `json:"body"` // may contain markup from the rich-text editor
	Keywords         string         `json:"keywords,omitempty"`
	PresentationType string         `json:"presentation_type,omitempty"`
	Status           AbstractStatus `json:"status"`
	FileKey          string         `json:"file_key,omitempty"` // S3 key of the uploaded PDF, if any
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// AbstractComment is a reviewer comment on an abstract.
type AbstractComment struct {
	ID         uuid.UUID `json:"id"`
	AbstractID uuid.UUID `json:"abstract_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Coauthor is a co-author attached to an abstract.
type Coauthor struct {
	ID          uuid.UUID `json:"id"`
	AbstractID  uuid.UUID `json:"abstract_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Affiliation string    `json:"affiliation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AbstractStatusChange records one review transition for the history view.
type AbstractStatusChange struct {
	ID         uuid.UUID      `json:"id"`
	AbstractID uuid.UUID      `json:"abstract_id"`
	ChangedBy  uuid.UUID      `json:"changed_by"`
	FromStatus AbstractStatus `json:"from_status"`
	ToStatus   AbstractStatus `json:"to_status"`
	Note       string         `json:"note,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
