package model

import (
	"time"

	"github.com/google/uuid"
)

// Meta carries the identity and timestamp columns shared by every persisted
// record. Records embed it instead of inheriting behavior; the generic store
// in internal/entity operates on anything exposing EntityID.
//
// IDs are random UUIDs generated at creation and never reassigned.
// created_at is set once; updated_at is maintained by a database trigger on
// UPDATE, so a freshly committed row must be re-read to observe it.
type Meta struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewMeta generates a new identity with both timestamps set to now (UTC).
func NewMeta() Meta {
	now := time.Now().UTC()
	return Meta{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EntityID implements entity.Record.
func (m Meta) EntityID() uuid.UUID {
	return m.ID
}
