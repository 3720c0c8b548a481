package counterpart

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultMaxRedirects is the length of redirect chain the client follows.
const DefaultMaxRedirects = 10

// ClientOptions configures the HTTP client used for existence checks.
type ClientOptions struct {
	// Base is the counterpart base URL. Session cookies are scoped to its host.
	Base string

	// SessionCookie is sent to the counterpart as the user's credentials.
	// Format: "name=value" or "name1=value1; name2=value2".
	SessionCookie string

	// ProxyAddress routes requests through a SOCKS5 proxy in "host:port" form.
	// Empty means a direct connection.
	ProxyAddress string

	// Timeout bounds a whole request, redirects and body included.
	// Zero leaves the bound to the per-check deadline.
	Timeout time.Duration

	// MaxRedirects limits the redirect chain. Zero means DefaultMaxRedirects.
	MaxRedirects int
}

// NewHTTPClient creates the client the Checker uses.
//
// The client keeps a cookie jar seeded with the session cookie, so the
// counterpart sees the same credentials a browser would send, and follows
// redirects up to the configured limit.
func NewHTTPClient(opts ClientOptions) (*http.Client, error) {
	base, err := url.Parse(opts.Base)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBase, opts.Base)
	}

	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected default transport %T", http.DefaultTransport)
	}
	transport = transport.Clone()

	if opts.ProxyAddress != "" {
		dialer, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = contextDialer(dialer)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if opts.SessionCookie != "" {
		cookies, err := http.ParseCookie(opts.SessionCookie)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session cookie: %w", err)
		}
		for _, c := range cookies {
			c.Path = "/"
		}
		jar.SetCookies(base, cookies)
	}

	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}, nil
}

// contextDialer adapts a proxy.Dialer to http.Transport.DialContext.
// The SOCKS5 dialer from x/net implements proxy.ContextDialer; other
// dialers ignore the context.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}
}
