package router

import (
	"context"

	"github.com/nao1215/wikibridge/internal/model"
	"github.com/nao1215/wikibridge/internal/tab"
)

// Transport delivers one request from a page to the background and returns
// its response. A nil response with a nil error means the background did not
// answer.
type Transport interface {
	Send(ctx context.Context, from tab.ID, msg model.Request) (*model.Response, error)
}

// LocalTransport connects a page directly to an in-process Background.
type LocalTransport struct {
	background *Background
}

// NewLocalTransport creates a LocalTransport.
func NewLocalTransport(background *Background) *LocalTransport {
	return &LocalTransport{background: background}
}

// Send dispatches msg and waits for the response. If ctx ends first the
// page is considered gone and ErrContextInvalidated is returned.
func (t *LocalTransport) Send(ctx context.Context, from tab.ID, msg model.Request) (*model.Response, error) {
	req, err := msg.CheckRequest()
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ErrContextInvalidated
	}

	// The check is not cancelled when the page goes away.
	ch := t.background.Dispatch(context.WithoutCancel(ctx), Sender{Tab: from}, req)
	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, nil
		}
		return &resp, nil
	case <-ctx.Done():
		return nil, ErrContextInvalidated
	}
}
