package model

import "strings"

// ArticleID is the canonical path segment of an article, with spaces encoded
// as underscores. Both the source encyclopedia and the counterpart site use
// the same segment, so it can be appended to the counterpart base verbatim.
type ArticleID string

// String returns the identifier as a plain string.
func (id ArticleID) String() string {
	return string(id)
}

// IsEmpty reports whether the identifier has no content.
func (id ArticleID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Anchor is an optional same-page fragment identifier.
// An absent anchor is distinct from an anchor whose name is empty.
type Anchor struct {
	name    string
	present bool
}

// NoAnchor is the absent anchor.
var NoAnchor = Anchor{}

// AnchorOf returns a present anchor with the given name.
func AnchorOf(name string) Anchor {
	return Anchor{name: name, present: true}
}

// Get returns the anchor name and whether the anchor is present.
func (a Anchor) Get() (string, bool) {
	return a.name, a.present
}

// Present reports whether the anchor is present.
func (a Anchor) Present() bool {
	return a.present
}

// Name returns the anchor name, or "" when absent.
func (a Anchor) Name() string {
	return a.name
}

// Usable reports whether the anchor is present and non-empty, which is the
// only case in which it can be appended to a URL.
func (a Anchor) Usable() bool {
	return a.present && a.name != ""
}

// Pointer returns the anchor as an optional string for JSON encoding.
func (a Anchor) Pointer() *string {
	if !a.present {
		return nil
	}
	name := a.name
	return &name
}

// AnchorFromPointer is the inverse of Anchor.Pointer.
func AnchorFromPointer(p *string) Anchor {
	if p == nil {
		return NoAnchor
	}
	return AnchorOf(*p)
}

// AppendTo returns url with "#name" appended when the anchor is usable,
// otherwise url unchanged.
func (a Anchor) AppendTo(url string) string {
	if !a.Usable() {
		return url
	}
	return url + "#" + a.name
}

// CheckRequest is sent once per classified page load.
type CheckRequest struct {
	ArticleID ArticleID
	Anchor    Anchor
}
