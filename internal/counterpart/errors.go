package counterpart

import "errors"

var (
	// ErrInvalidBase is returned when the counterpart base URL cannot be parsed
	// or is not absolute.
	ErrInvalidBase = errors.New("invalid counterpart base URL")

	// ErrTooManyRedirects is returned when the redirect chain exceeds the limit.
	ErrTooManyRedirects = errors.New("stopped after too many redirects")
)
