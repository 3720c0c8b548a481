package bridge

import (
	"errors"
	"fmt"

	"github.com/nao1215/wikibridge/internal/router"
)

var (
	// ErrUnavailable is returned when the bridge cannot be reached.
	ErrUnavailable = errors.New("bridge unavailable")
	// ErrRejected is returned when the bridge answers with an error status.
	ErrRejected = errors.New("bridge rejected request")
	// ErrOriginNotAllowed is returned for browser requests from an origin
	// outside the allow-list.
	ErrOriginNotAllowed = errors.New("origin not allowed")
	// ErrLocalOnly is returned for browser requests to a route that only
	// local processes may call.
	ErrLocalOnly = errors.New("route is not available to page scripts")
)

// invalidated reports a cancelled page context the way the router expects.
func invalidated(cause error) error {
	return fmt.Errorf("%w: %v", router.ErrContextInvalidated, cause)
}
