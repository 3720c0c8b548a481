package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/wikibridge/internal/model"
	"github.com/nao1215/wikibridge/internal/tab"
)

// Client talks to a bridge Server. It implements router.Transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a Client for the bridge at addr. addr may be a host:port
// or a full http URL.
func NewClient(addr string, opts ...ClientOption) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts msg to the background as tab from.
func (c *Client) Send(ctx context.Context, from tab.ID, msg model.Request) (*model.Response, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	header := http.Header{}
	if from.Addressable() {
		header.Set(HeaderTabID, from.String())
	}

	data, err := c.do(ctx, http.MethodPost, "/v1/messages", header, payload)
	if err != nil {
		return nil, err
	}
	resp, err := model.DecodeResponse(data)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AutoNavigate returns the current preference.
func (c *Client) AutoNavigate(ctx context.Context) (bool, error) {
	data, err := c.do(ctx, http.MethodGet, "/v1/preferences/auto-navigate", nil, nil)
	if err != nil {
		return false, err
	}
	var body PreferenceBody
	if err := json.Unmarshal(data, &body); err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	return body.AutoNavigate != nil && *body.AutoNavigate, nil
}

// SetAutoNavigate stores the preference.
func (c *Client) SetAutoNavigate(ctx context.Context, on bool) error {
	payload, err := json.Marshal(PreferenceBody{AutoNavigate: &on})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, "/v1/preferences/auto-navigate", nil, payload)
	return err
}

// Activate activates the control-surface toggle.
func (c *Client) Activate(ctx context.Context) (SurfaceBody, error) {
	return c.surfaceCall(ctx, http.MethodPost, "/v1/surface/toggle")
}

// Surface returns the control-surface toggle item.
func (c *Client) Surface(ctx context.Context) (SurfaceBody, error) {
	return c.surfaceCall(ctx, http.MethodGet, "/v1/surface")
}

func (c *Client) surfaceCall(ctx context.Context, method, path string) (SurfaceBody, error) {
	data, err := c.do(ctx, method, path, nil, nil)
	if err != nil {
		return SurfaceBody{}, err
	}
	var body SurfaceBody
	if err := json.Unmarshal(data, &body); err != nil {
		return SurfaceBody{}, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	return body, nil
}

// OpenTab opens a tab on the bridge.
func (c *Client) OpenTab(ctx context.Context, url string) (tab.Tab, error) {
	payload, err := json.Marshal(OpenTabBody{URL: url})
	if err != nil {
		return tab.Tab{}, err
	}
	data, err := c.do(ctx, http.MethodPost, "/v1/tabs", nil, payload)
	if err != nil {
		return tab.Tab{}, err
	}
	var t tab.Tab
	if err := json.Unmarshal(data, &t); err != nil {
		return tab.Tab{}, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	return t, nil
}

// Tab returns a tab from the bridge.
func (c *Client) Tab(ctx context.Context, id tab.ID) (tab.Tab, error) {
	data, err := c.do(ctx, http.MethodGet, "/v1/tabs/"+id.String(), nil, nil)
	if err != nil {
		return tab.Tab{}, err
	}
	var t tab.Tab
	if err := json.Unmarshal(data, &t); err != nil {
		return tab.Tab{}, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	return t, nil
}

// Health checks that the bridge is up.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, payload []byte) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, invalidated(ctx.Err())
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, invalidated(ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageSize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, invalidated(ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			return nil, fmt.Errorf("%w (%d): %s", ErrRejected, resp.StatusCode, eb.Error)
		}
		return nil, fmt.Errorf("%w (%d)", ErrRejected, resp.StatusCode)
	}
	return data, nil
}
