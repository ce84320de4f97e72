package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChangelogEntry is one append-only audit record for the changelog viewer.
type ChangelogEntry struct {
	ID        uuid.UUID       `json:"id"`
	Entity    string          `json:"entity"` // "abstract", "delegate", "registration", ...
	EntityID  uuid.UUID       `json:"entity_id"`
	Action    string          `json:"action"` // "created", "updated", "deleted", "status_changed", ...
	ActorID   *uuid.UUID      `json:"actor_id,omitempty"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
