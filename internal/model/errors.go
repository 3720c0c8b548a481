package model

import "errors"

// Message boundary errors. Payloads that fail these checks are rejected
// before they reach the router.
var (
	// ErrMalformedMessage is returned when a payload is not a well-formed message.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnknownMessageType is returned when the message type is not recognized.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrUnknownStatus is returned when a response carries an undefined status.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrMissingArticleID is returned when a check request has no article identifier.
	ErrMissingArticleID = errors.New("missing article identifier")
)
