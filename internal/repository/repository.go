package repository

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a UNIQUE constraint.
	ErrDuplicate = errors.New("record already exists")
	// ErrLastAdmin is returned when a role change would leave no admin account.
	ErrLastAdmin = errors.New("last admin cannot be demoted")
)

// timestampLayout is the text format of created_at columns.
const timestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, s, time.UTC)
}
