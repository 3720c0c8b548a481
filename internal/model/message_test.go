package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestDecodeRequest tests validation of page-to-background messages.
func TestDecodeRequest(t *testing.T) {
	t.Parallel()

	t.Run("decodes check with anchor", func(t *testing.T) {
		t.Parallel()

		req, err := DecodeRequest([]byte(`{"type":"CHECK","articleId":"Diplomacy_(game)","anchor":"Postal_and_email_play"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.ArticleID != "Diplomacy_(game)" {
			t.Errorf("expected article id Diplomacy_(game), got %q", req.ArticleID)
		}
		name, ok := req.Anchor.Get()
		if !ok || name != "Postal_and_email_play" {
			t.Errorf("expected anchor Postal_and_email_play, got %q (present=%v)", name, ok)
		}
	})

	t.Run("absent anchor differs from empty anchor", func(t *testing.T) {
		t.Parallel()

		absent, err := DecodeRequest([]byte(`{"type":"CHECK","articleId":"Foo"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		empty, err := DecodeRequest([]byte(`{"type":"CHECK","articleId":"Foo","anchor":""}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if absent.Anchor.Present() {
			t.Error("expected absent anchor")
		}
		if !empty.Anchor.Present() {
			t.Error("expected present empty anchor")
		}
		if empty.Anchor.Usable() {
			t.Error("empty anchor must not be usable")
		}
	})

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"unknown type", `{"type":"PING","articleId":"Foo"}`, ErrUnknownMessageType},
		{"missing type", `{"articleId":"Foo"}`, ErrUnknownMessageType},
		{"missing article", `{"type":"CHECK"}`, ErrMissingArticleID},
		{"blank article", `{"type":"CHECK","articleId":"  "}`, ErrMissingArticleID},
		{"unknown field", `{"type":"CHECK","articleId":"Foo","tab":1}`, ErrMalformedMessage},
		{"not json", `CHECK Foo`, ErrMalformedMessage},
		{"wrong field type", `{"type":"CHECK","articleId":42}`, ErrMalformedMessage},
		{"trailing data", `{"type":"CHECK","articleId":"Foo"}{}`, ErrMalformedMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeRequest([]byte(tc.payload))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestNewCheckMessage tests that a request survives encoding.
func TestNewCheckMessage(t *testing.T) {
	t.Parallel()

	req := CheckRequest{ArticleID: "Foo", Anchor: AnchorOf("Bar")}
	data, err := json.Marshal(NewCheckMessage(req))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"type":"CHECK","articleId":"Foo","anchor":"Bar"}` {
		t.Errorf("unexpected encoding: %s", data)
	}

	noAnchor, err := json.Marshal(NewCheckMessage(CheckRequest{ArticleID: "Foo"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(noAnchor) != `{"type":"CHECK","articleId":"Foo"}` {
		t.Errorf("expected anchor to be omitted, got %s", noAnchor)
	}
}

// TestNewResponse tests conversion of results into wire responses.
func TestNewResponse(t *testing.T) {
	t.Parallel()

	t.Run("error carries message", func(t *testing.T) {
		t.Parallel()

		resp := NewResponse(Failed("https://grokipedia.com/page/Foo", errors.New("connection refused")))
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"status":"error","url":"https://grokipedia.com/page/Foo","navigated":false,"error":"connection refused"}`
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}
	})

	t.Run("error without target omits url", func(t *testing.T) {
		t.Parallel()

		resp := NewResponse(Failed("", errors.New("boom")))
		if resp.URL != nil {
			t.Errorf("expected url to be omitted, got %q", *resp.URL)
		}
	})

	t.Run("found omits error", func(t *testing.T) {
		t.Parallel()

		resp := NewResponse(Found("https://grokipedia.com/page/Foo").WithNavigated(true))
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"status":"found","url":"https://grokipedia.com/page/Foo","navigated":true}`
		if string(data) != want {
			t.Errorf("got %s, want %s", data, want)
		}
	})

	t.Run("result round trip", func(t *testing.T) {
		t.Parallel()

		for _, in := range []CheckResult{
			Found("u#a").WithNavigated(true),
			NotFound("u"),
			LoginRequired("u#a"),
			Failed("u", errors.New("timeout")),
		} {
			data, err := json.Marshal(NewResponse(in))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			resp, err := DecodeResponse(data)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(in, resp.Result()); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		}
	})
}

// TestDecodeResponse tests rejection of malformed responses.
func TestDecodeResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"unknown status", `{"status":"maybe","navigated":false}`, ErrUnknownStatus},
		{"missing status", `{"navigated":false}`, ErrUnknownStatus},
		{"numeric status", `{"status":1,"navigated":false}`, ErrMalformedMessage},
		{"unknown field", `{"status":"found","navigated":false,"extra":true}`, ErrMalformedMessage},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeResponse([]byte(tc.payload))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
