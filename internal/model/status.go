package model

import (
	"encoding/json"
	"fmt"
)

// Status is the classified outcome of an existence check.
// Exactly one status applies to every result.
type Status string

const (
	// StatusFound means the counterpart article was confirmed to exist.
	StatusFound Status = "found"

	// StatusNotFound means the counterpart article was confirmed to be absent.
	// This is a valid outcome, not an error.
	StatusNotFound Status = "not_found"

	// StatusLoginRequired means the counterpart redirected to an auth wall,
	// so existence is unknown.
	StatusLoginRequired Status = "login_required"

	// StatusError means a network or transport failure prevented the check.
	StatusError Status = "error"
)

// Statuses lists every valid status in a stable order.
func Statuses() []Status {
	return []Status{StatusFound, StatusNotFound, StatusLoginRequired, StatusError}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusFound, StatusNotFound, StatusLoginRequired, StatusError:
		return true
	default:
		return false
	}
}

// Notable reports whether a result with this status deserves a notice on
// the page.
func (s Status) Notable() bool {
	return s == StatusFound || s == StatusLoginRequired
}

// String returns the wire name of the status.
func (s Status) String() string {
	return string(s)
}

// UnmarshalJSON rejects unknown status names.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("%w: status must be a string", ErrMalformedMessage)
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a wire name into a Status.
func ParseStatus(name string) (Status, error) {
	s := Status(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, name)
	}
	return s, nil
}
