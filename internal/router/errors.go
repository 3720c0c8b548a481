package router

import "errors"

var (
	// ErrContextInvalidated is returned by a Transport when the page that sent
	// a request is gone or the channel to the background was closed.
	ErrContextInvalidated = errors.New("page context invalidated")
	// ErrCheckPanicked wraps a panic recovered from a check.
	ErrCheckPanicked = errors.New("check panicked")
	// ErrDeadlineExceeded is reported when a check outlives the dispatch deadline.
	ErrDeadlineExceeded = errors.New("check deadline exceeded")
)
