package model

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces record identifiers.
// Implemented by UUIDv7IDs (production) and testutil.SequenceIDs (tests).
type IDGenerator interface {
	NewID() string
}

// UUIDv7IDs generates time-sortable UUIDv7 identifiers.
type UUIDv7IDs struct{}

// NewID returns a hyphenated UUIDv7. Panics if the random source fails.
func (UUIDv7IDs) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock supplies wall-clock time for record stamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
