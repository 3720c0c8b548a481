package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType discriminates messages sent from the page context.
type MessageType string

// MessageTypeCheck asks the background to check for a counterpart article.
const MessageTypeCheck MessageType = "CHECK"

// Request is the wire form of a page-to-background message.
type Request struct {
	Type      MessageType `json:"type"`
	ArticleID string      `json:"articleId"`
	Anchor    *string     `json:"anchor,omitempty"`
}

// NewCheckMessage builds the wire form of a check request.
func NewCheckMessage(req CheckRequest) Request {
	return Request{
		Type:      MessageTypeCheck,
		ArticleID: req.ArticleID.String(),
		Anchor:    req.Anchor.Pointer(),
	}
}

// CheckRequest converts a validated wire message into a CheckRequest.
func (r Request) CheckRequest() (CheckRequest, error) {
	if r.Type != MessageTypeCheck {
		return CheckRequest{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, r.Type)
	}
	id := ArticleID(r.ArticleID)
	if id.IsEmpty() {
		return CheckRequest{}, ErrMissingArticleID
	}
	return CheckRequest{ArticleID: id, Anchor: AnchorFromPointer(r.Anchor)}, nil
}

// DecodeRequest parses and validates a page-to-background message.
// Unknown fields and unknown message types are rejected.
func DecodeRequest(data []byte) (CheckRequest, error) {
	var msg Request
	if err := decodeStrict(data, &msg); err != nil {
		return CheckRequest{}, err
	}
	return msg.CheckRequest()
}

// Response is the wire form of a background-to-page message.
type Response struct {
	Status    Status  `json:"status"`
	URL       *string `json:"url,omitempty"`
	Navigated bool    `json:"navigated"`
	Error     *string `json:"error,omitempty"`
}

// NewResponse converts a CheckResult into its wire form.
func NewResponse(r CheckResult) Response {
	resp := Response{
		Status:    r.Status,
		Navigated: r.Navigated && r.Status == StatusFound,
	}
	if r.URL != "" {
		u := r.URL
		resp.URL = &u
	}
	if r.Status == StatusError {
		e := r.Error
		resp.Error = &e
	}
	return resp
}

// Result converts the wire form back into a CheckResult.
func (r Response) Result() CheckResult {
	res := CheckResult{Status: r.Status, Navigated: r.Navigated && r.Status == StatusFound}
	if r.URL != nil {
		res.URL = *r.URL
	}
	if r.Error != nil {
		res.Error = *r.Error
	}
	return res
}

// DecodeResponse parses and validates a background-to-page message.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := decodeStrict(data, &resp); err != nil {
		return Response{}, err
	}
	if !resp.Status.Valid() {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownStatus, resp.Status)
	}
	return resp, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, ErrUnknownStatus) || errors.Is(err, ErrMalformedMessage) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformedMessage)
	}
	return nil
}
