package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/wikibridge/internal/model"
	"github.com/nao1215/wikibridge/internal/tab"
)

// Classifier turns a page location into a check request.
type Classifier interface {
	Classify(location string) (model.CheckRequest, bool)
}

// Presenter shows the counterpart notice.
type Presenter interface {
	Present(url string, loginRequired bool)
}

// Receiver reacts to a response on the page side.
type Receiver struct {
	presenter Presenter
	logger    *slog.Logger
}

// NewReceiver creates a Receiver.
func NewReceiver(presenter Presenter, logger *slog.Logger) *Receiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Receiver{presenter: presenter, logger: logger}
}

// Deliver handles the outcome of a Send. It reports whether a notice was
// presented.
func (r *Receiver) Deliver(resp *model.Response, err error) bool {
	switch {
	case errors.Is(err, ErrContextInvalidated):
		r.logger.Debug("page gone before response arrived")
		return false
	case err != nil:
		r.logger.Warn("check request failed", "error", err)
		return false
	case resp == nil:
		return false
	case resp.Navigated:
		return false
	}

	switch resp.Status {
	case model.StatusFound, model.StatusLoginRequired:
		if resp.URL == nil {
			r.logger.Warn("response without url", "status", resp.Status.String())
			return false
		}
		r.presenter.Present(*resp.URL, resp.Status == model.StatusLoginRequired)
		return true
	case model.StatusError:
		if resp.Error != nil {
			r.logger.Debug("counterpart check failed", "error", *resp.Error)
		}
		return false
	default:
		return false
	}
}

// Page is the page-context side of the router.
type Page struct {
	classifier Classifier
	transport  Transport
	receiver   *Receiver
}

// NewPage creates a Page.
func NewPage(classifier Classifier, transport Transport, receiver *Receiver) *Page {
	return &Page{classifier: classifier, transport: transport, receiver: receiver}
}

// Visit handles one page load. Eligible pages send exactly one request and
// deliver its response; ineligible pages send nothing. It reports whether a
// request was sent.
func (p *Page) Visit(ctx context.Context, id tab.ID, location string) bool {
	req, ok := p.classifier.Classify(location)
	if !ok {
		return false
	}
	resp, err := p.transport.Send(ctx, id, model.NewCheckMessage(req))
	p.receiver.Deliver(resp, err)
	return true
}
