package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wikibridge/internal/bridge"
	"github.com/nao1215/wikibridge/internal/config"
	"github.com/nao1215/wikibridge/internal/notice"
)

func TestRunVisitCmd(t *testing.T) {
	t.Parallel()

	srv := newCounterpart(t)
	base := srv.URL + "/page/"

	tests := []struct {
		name     string
		location string
		want     string
	}{
		{
			name:     "counterpart found shows notice",
			location: "https://en.wikipedia.org/wiki/Diplomacy#History",
			want:     notice.Message(base+"Diplomacy#History", false),
		},
		{
			name:     "missing counterpart",
			location: "https://en.wikipedia.org/wiki/Missing_article",
			want:     "no counterpart article on Grokipedia",
		},
		{
			name:     "not an article",
			location: "https://en.wikipedia.org/wiki/Talk:Diplomacy",
			want:     "not an article page",
		},
		{
			name:     "home page",
			location: "https://en.wikipedia.org/wiki/Main_Page",
			want:     "not an article page",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// A fresh database installs auto-navigate OFF, so nothing opens a browser.
			out, err := execute(t, "visit", "--db-dir", t.TempDir(), "--base", base, tt.location)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected output to contain %q, got %q", tt.want, out)
			}
		})
	}
}

// TestRunVisitCmdDeadline tests that a hung counterpart ends in the
// background's failure response, not in the page giving up first.
func TestRunVisitCmdDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	out, err := execute(t, "visit", "--db-dir", t.TempDir(), "--base", srv.URL+"/page/",
		"--deadline", "200ms", "https://en.wikipedia.org/wiki/Diplomacy")
	if err != nil {
		t.Fatalf("expected the background response, got error: %v", err)
	}
	if !strings.Contains(out, "counterpart check failed") {
		t.Errorf("expected a failed check in output, got %q", out)
	}
}

func TestPageDeadline(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{time.Millisecond, config.DefaultDeadline} {
		if got := pageDeadline(d); got <= d {
			t.Errorf("pageDeadline(%s) = %s, want more than the background deadline", d, got)
		}
	}
}

func TestServeNavigatesBridgeTab(t *testing.T) {
	t.Parallel()

	srv := newCounterpart(t)

	cfg := config.NewConfig()
	cfg.DBDir = t.TempDir()
	cfg.CounterpartBase = srv.URL + "/page/"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	cmd := NewServeCmd()
	var serveOut bytes.Buffer
	cmd.SetOut(&serveOut)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(ctx, cmd, cfg, logger, ln)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("serve did not stop")
		}
	})

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer reqCancel()

	client := bridge.NewClient(ln.Addr().String())
	if err := client.Health(reqCtx); err != nil {
		t.Fatalf("bridge not healthy: %v", err)
	}

	on, err := toggleRemote(reqCtx, client, "")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !on {
		t.Fatal("expected auto-navigate ON after one activation")
	}

	location := "https://en.wikipedia.org/wiki/Diplomacy#History"
	opened, err := client.OpenTab(reqCtx, location)
	if err != nil {
		t.Fatalf("open tab: %v", err)
	}

	var out bytes.Buffer
	resp, err := visit(reqCtx, &out, logger, cfg, client, opened.ID, location)
	if err != nil {
		t.Fatalf("visit: %v", err)
	}
	if resp == nil || !resp.Navigated {
		t.Fatalf("expected navigated response, got %+v", resp)
	}
	if strings.Contains(out.String(), "counterpart on Grokipedia") {
		t.Errorf("navigated page must not show a notice, got %q", out.String())
	}

	current, err := client.Tab(reqCtx, opened.ID)
	if err != nil {
		t.Fatalf("tab: %v", err)
	}
	if want := cfg.CounterpartBase + "Diplomacy#History"; current.URL != want {
		t.Errorf("tab url = %q, want %q", current.URL, want)
	}

	on, err = toggleRemote(reqCtx, client, toggleStatus)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !on {
		t.Error("expected status ON")
	}
}
