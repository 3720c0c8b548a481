// Package page classifies source encyclopedia locations.
//
// The classifier decides whether a page is an ordinary article worth
// checking and derives the canonical ArticleID and optional Anchor from its
// location. Everything here is a pure function of the location: nothing
// touches the network and the same location always yields the same pair.
//
// # Eligibility
//
// A path is eligible when, after the routing prefix is removed, it decodes
// cleanly, is not empty, is not the home page, and does not begin with one
// of the reserved namespace prefixes (Special:, Talk:, User:, File: and so
// on). Prefix matching is case-sensitive, matching how the source site
// names its namespaces.
package page
