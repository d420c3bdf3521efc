package utils

import "github.com/google/uuid"

var newV7 = uuid.NewV7

// NewTimeOrderedID returns a UUIDv7 so journal rows sort by creation. It
// falls back to a random v4 when the clock source fails.
func NewTimeOrderedID() uuid.UUID {
	if id, err := newV7(); err == nil {
		return id
	}
	return uuid.New()
}

// ParseID parses a canonical UUID and rejects the nil UUID
func ParseID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
