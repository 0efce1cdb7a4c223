// Package id provides UUID generation for cost items.
// UUIDv7 is time-ordered, so generated ids sort in insertion order.
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID.
type ID = uuid.UUID

// New generates a new UUIDv7 (time-ordered UUID).
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return id
}

// NewString generates a new id in its canonical string form.
func NewString() string {
	return New().String()
}
