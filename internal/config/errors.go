package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when batch mode has no page locations.
	ErrNoTarget = errors.New("no target specified: provide page URLs or use --list")

	// ErrInvalidCounterpartBase is returned when the base is not an absolute
	// http(s) URL ending in "/".
	ErrInvalidCounterpartBase = errors.New("invalid counterpart base: must be an absolute http(s) URL ending in /")

	// ErrInvalidTimeout is returned when the check timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDeadline is returned when the dispatch deadline is not positive.
	ErrInvalidDeadline = errors.New("invalid deadline: must be positive")

	// ErrInvalidMaxBodySize is returned when the body limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidAnchorStrategy is returned for an unknown anchor strategy.
	ErrInvalidAnchorStrategy = errors.New("invalid anchor strategy: must be regex or dom")

	// ErrInvalidRoutePrefix is returned when the route prefix is not a path.
	ErrInvalidRoutePrefix = errors.New("invalid route prefix: must start with /")

	// ErrEmptyListenAddress is returned when the bridge has nowhere to listen.
	ErrEmptyListenAddress = errors.New("listen address must not be empty")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidReportFormat is returned for an unknown report format in the
	// config file.
	ErrInvalidReportFormat = errors.New("invalid report format: must be simple, json or markdown")
)
